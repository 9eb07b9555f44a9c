package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/isometry/gh-sponsor-relay/internal/validation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "It's a Secret to Everybody"
	testCreated = `{"action":"created","sponsorship":{"sponsor":{"login":"alice","html_url":"https://github.com/alice"},"tier":{"monthly_price_in_dollars":10}}}`
)

// emptyConfigFile returns a configuration file that resets every setting to its default.
func emptyConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	return path
}

func resetConfig(t *testing.T) {
	t.Helper()
	require.NoError(t, config.LoadFromFile(emptyConfigFile(t)))
	require.NoError(t, config.SetDefaults())
	logger = helpers.NewNoopLogger()
}

// unsetEnv clears the environment variables bound to flags used by the tests.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GITHUB_SECRET", "DISCORD_WEBHOOK_URL", "MODE", "SECRETS_SOURCE", "NOTIFICATION_TEMPLATE"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

type discordRecorder struct {
	mu       sync.Mutex
	messages []map[string]any
}

func (d *discordRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg map[string]any
	_ = json.NewDecoder(r.Body).Decode(&msg)
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (d *discordRecorder) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.messages)
}

func TestLookupConfigFilePath(t *testing.T) {
	testCases := []struct {
		Name     string
		Args     []string
		Expected string
	}{
		{Name: "default", Args: nil, Expected: defaultConfigFilePath},
		{Name: "long", Args: []string{"service", "--config", "/etc/relay.yaml"}, Expected: "/etc/relay.yaml"},
		{Name: "long_equals", Args: []string{"--config=/etc/relay.yaml", "lambda"}, Expected: "/etc/relay.yaml"},
		{Name: "short", Args: []string{"-c", "relay.yaml"}, Expected: "relay.yaml"},
		{Name: "unknown_flags", Args: []string{"--github-secret", "x", "-v", "-c", "relay.yaml"}, Expected: "relay.yaml"},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, lookupConfigFilePath(tc.Args))
		})
	}
}

func TestNewCommand_Precedence(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
global:
  mode: service
github:
  webhookSecret: from-file
discord:
  webhookURL: https://discord.example/file
`), 0o600))
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/env")

	cmd := newCommand([]string{"--github-secret", "from-flag", "-c", path})
	require.NoError(t, cmd.ParseFlags([]string{"--github-secret", "from-flag", "-c", path}))

	assert.Equal(t, config.ModeService, config.Global.Mode)
	assert.Equal(t, "from-flag", config.GitHub.WebhookSecret)
	assert.Equal(t, "https://discord.example/env", config.Discord.WebhookURL)
	assert.Equal(t, config.SecretsSourceEnv, config.Global.SecretsSource)
}

func TestNewCommand_InvalidMode(t *testing.T) {
	unsetEnv(t)
	cmd := newCommand([]string{"--mode", "bogus", "-c", emptyConfigFile(t)})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode: bogus")
}

func TestSign(t *testing.T) {
	unsetEnv(t)
	payload := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"key": "value"}`), 0o600))
	const expected = "sha256=bc7daef0d3e3b227f6f1dd1b6e8ee0711a94bfd6a61ca28ec3c4aa22a33d27d8\n"

	testCases := []struct {
		Name  string
		Args  []string
		Stdin string
	}{
		{Name: "stdin", Args: []string{"sign"}, Stdin: `{"key": "value"}`},
		{Name: "stdin_dash", Args: []string{"sign", "-"}, Stdin: `{"key": "value"}`},
		{Name: "file", Args: []string{"sign", payload}},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			args := append(tc.Args, "--github-secret", "key", "-c", emptyConfigFile(t))
			cmd := newCommand(args)
			var out bytes.Buffer
			cmd.SetIn(strings.NewReader(tc.Stdin))
			cmd.SetOut(&out)
			cmd.SetErr(io.Discard)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, expected, out.String())
		})
	}
}

func TestSign_Errors(t *testing.T) {
	unsetEnv(t)

	cmd := newCommand([]string{"sign", "-c", emptyConfigFile(t)})
	cmd.SetIn(strings.NewReader("{}"))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorIs(t, cmd.Execute(), sponsorship.ErrMissingSecret)

	cmd = newCommand([]string{"sign", filepath.Join(t.TempDir(), "absent.json"), "--github-secret", "key", "-c", emptyConfigFile(t)})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorContains(t, cmd.Execute(), "failed to read payload")
}

type fakeStore map[string]string

func (f fakeStore) GetSecret(key string, _ bool) (*string, error) {
	v, ok := f[key]
	if !ok {
		return nil, errors.Errorf("parameter %s not found", key)
	}
	return &v, nil
}

func TestSetup(t *testing.T) {
	original := parameterStore
	t.Cleanup(func() { parameterStore = original })
	parameterStore = func(context.Context) (config.ParameterStore, error) {
		return fakeStore{
			"/relay/secret":  testSecret,
			"/relay/discord": "https://discord.example/api/webhooks/1/token",
		}, nil
	}

	testCases := []struct {
		Name        string
		Configure   func()
		ExpectedErr error
	}{
		{
			Name:        "missing_secret",
			Configure:   func() { config.Discord.WebhookURL = "https://discord.example" },
			ExpectedErr: sponsorship.ErrMissingSecret,
		},
		{
			Name:        "missing_webhook_url",
			Configure:   func() { config.GitHub.WebhookSecret = testSecret },
			ExpectedErr: sponsorship.ErrMissingSecret,
		},
		{
			Name: "env",
			Configure: func() {
				config.GitHub.WebhookSecret = testSecret
				config.Discord.WebhookURL = "https://discord.example"
			},
		},
		{
			Name: "ssm",
			Configure: func() {
				config.Global.SecretsSource = config.SecretsSourceSSM
				config.GitHub.WebhookSecretSSMKey = "/relay/secret"
				config.Discord.WebhookURLSSMKey = "/relay/discord"
			},
		},
		{
			Name: "ssm_missing_parameter",
			Configure: func() {
				config.Global.SecretsSource = config.SecretsSourceSSM
				config.GitHub.WebhookSecretSSMKey = "/relay/absent"
			},
			ExpectedErr: errors.New("parameter /relay/absent not found"),
		},
		{
			Name: "bad_template",
			Configure: func() {
				config.GitHub.WebhookSecret = testSecret
				config.Discord.WebhookURL = "https://discord.example"
				config.Notification.DescriptionTemplate = "{{ .Login "
			},
			ExpectedErr: errors.New("failed to parse notification template"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			resetConfig(t)
			tc.Configure()

			hdl, err := setup(context.Background())
			switch {
			case tc.ExpectedErr == nil:
				require.NoError(t, err)
				assert.NotNil(t, hdl)
			case errors.Is(tc.ExpectedErr, sponsorship.ErrMissingSecret):
				assert.ErrorIs(t, err, tc.ExpectedErr)
			default:
				assert.ErrorContains(t, err, tc.ExpectedErr.Error())
			}
		})
	}
}

func TestService_EndToEnd(t *testing.T) {
	resetConfig(t)
	discord := &discordRecorder{}
	discordServer := httptest.NewServer(discord)
	t.Cleanup(discordServer.Close)

	config.GitHub.WebhookSecret = testSecret
	config.Discord.WebhookURL = discordServer.URL + "/api/webhooks/1/token"
	config.Service.Path = "/webhook"

	s, err := newServer(context.Background())
	require.NoError(t, err)
	relay := httptest.NewServer(s.Handler)
	t.Cleanup(relay.Close)

	secret := validation.NewWebhookSecret(testSecret)
	testCases := []struct {
		Name           string
		Path           string
		Body           string
		EventType      string
		Signature      string
		ExpectedStatus int
		ExpectedCalls  int
	}{
		{
			Name:           "created",
			Path:           "/webhook",
			Body:           testCreated,
			EventType:      sponsorship.EventSponsorship,
			ExpectedStatus: http.StatusOK,
			ExpectedCalls:  1,
		},
		{
			Name:           "ping_well_formed",
			Path:           "/webhook",
			Body:           testCreated,
			EventType:      sponsorship.EventPing,
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "ping_malformed",
			Path:           "/webhook",
			Body:           `{"zen":`,
			EventType:      sponsorship.EventPing,
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "invalid_signature",
			Path:           "/webhook",
			Body:           testCreated,
			EventType:      sponsorship.EventSponsorship,
			Signature:      secret.Sign([]byte("tampered")),
			ExpectedStatus: http.StatusUnauthorized,
		},
		{
			Name:           "sub_path",
			Path:           "/webhook/github",
			Body:           testCreated,
			EventType:      sponsorship.EventSponsorship,
			ExpectedStatus: http.StatusOK,
			ExpectedCalls:  1,
		},
		{
			Name:           "unknown_path",
			Path:           "/other",
			Body:           testCreated,
			EventType:      sponsorship.EventSponsorship,
			ExpectedStatus: http.StatusNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			before := discord.calls()
			signature := tc.Signature
			if signature == "" {
				signature = secret.Sign([]byte(tc.Body))
			}

			req, err := http.NewRequest(http.MethodPost, relay.URL+tc.Path, strings.NewReader(tc.Body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(github.EventTypeHeader, tc.EventType)
			req.Header.Set(github.SHA256SignatureHeader, signature)
			req.Header.Set(github.DeliveryIDHeader, "72d3162e-cc78-11e3-81ab-4c9367dc0958")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.ExpectedStatus, resp.StatusCode)
			assert.Equal(t, tc.ExpectedCalls, discord.calls()-before)
		})
	}

	require.Len(t, discord.messages, 2)
	embeds, ok := discord.messages[0]["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	description := embeds[0].(map[string]any)["description"].(string)
	assert.Contains(t, description, "alice")
	assert.Contains(t, description, "https://github.com/alice")
	assert.Contains(t, description, "10")
}

func TestService_DefaultPathServesEverySubPath(t *testing.T) {
	resetConfig(t)
	discord := &discordRecorder{}
	discordServer := httptest.NewServer(discord)
	t.Cleanup(discordServer.Close)

	config.GitHub.WebhookSecret = testSecret
	config.Discord.WebhookURL = discordServer.URL + "/api/webhooks/1/token"

	s, err := newServer(context.Background())
	require.NoError(t, err)
	relay := httptest.NewServer(s.Handler)
	t.Cleanup(relay.Close)

	signature := validation.NewWebhookSecret(testSecret).Sign([]byte(testCreated))
	for _, path := range []string{"/", "/webhook", "/api/github-webhook"} {
		t.Run(path, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, relay.URL+path, strings.NewReader(testCreated))
			require.NoError(t, err)
			req.Header.Set(github.EventTypeHeader, sponsorship.EventSponsorship)
			req.Header.Set(github.SHA256SignatureHeader, signature)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
	assert.Equal(t, 3, discord.calls())
}

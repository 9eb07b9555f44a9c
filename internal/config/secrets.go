package config

import (
	"strings"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/pkg/errors"
)

// ParameterStore fetches named secrets.
type ParameterStore interface {
	GetSecret(key string, encrypted bool) (*string, error)
}

// ResolveSecrets populates the webhook secret and the Discord webhook URL from store when the
// secrets source is SSM. Values already set explicitly take precedence. It is a no-op for the env source.
func ResolveSecrets(store ParameterStore) error {
	switch strings.TrimSpace(strings.ToLower(Global.SecretsSource)) {
	case "", SecretsSourceEnv:
		return nil
	case SecretsSourceSSM:
		if store == nil {
			return errors.New("no parameter store available")
		}
	default:
		return errors.Errorf("unsupported secrets source: %s", Global.SecretsSource)
	}

	targets := []struct {
		value *string
		key   string
	}{
		{&GitHub.WebhookSecret, GitHub.WebhookSecretSSMKey},
		{&Discord.WebhookURL, Discord.WebhookURLSSMKey},
	}
	for _, t := range targets {
		if *t.value != "" || t.key == "" {
			continue
		}
		v, err := store.GetSecret(t.key, true)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", t.key)
		}
		*t.value = helpers.String(v)
	}
	return nil
}

// Validate fails fast when a required value is missing.
func Validate() error {
	if GitHub.WebhookSecret == "" {
		return sponsorship.NewError(sponsorship.KindMissingSecret, "GITHUB_SECRET is not configured")
	}
	if Discord.WebhookURL == "" {
		return sponsorship.NewError(sponsorship.KindMissingSecret, "DISCORD_WEBHOOK_URL is not configured")
	}
	return nil
}

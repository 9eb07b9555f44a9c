// Package discord provides the Controller that delivers sponsorship notifications to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// Controller posts notifications to a single Discord webhook.
type Controller struct {
	logger     *slog.Logger
	webhookURL string
	timeout    time.Duration
	httpClient *http.Client
}

// NewController initializes a Controller with the provided options, setting defaults where necessary.
func NewController(opts ...Option) *Controller {
	_inst := &Controller{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.httpClient == nil {
		_inst.httpClient = &http.Client{
			Timeout:   _inst.timeout,
			Transport: &loggingRoundTripper{logger: _inst.logger, next: http.DefaultTransport},
		}
	}
	return _inst
}

// Message is the execute-webhook request body.
type Message struct {
	Embeds          []Embed          `json:"embeds"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedFooter is the footer of an Embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// AllowedMentions controls which mentions in the message are resolved. An empty Parse list resolves none.
type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// NewMessage converts a notification into a single-embed message.
func NewMessage(n *sponsorship.Notification) *Message {
	msg := &Message{
		Embeds: []Embed{{
			Title:       n.Title,
			Description: n.Description,
			Color:       n.Color,
		}},
	}
	if n.Footer != "" {
		msg.Embeds[0].Footer = &EmbedFooter{Text: n.Footer}
	}
	if n.SuppressMentions {
		msg.AllowedMentions = &AllowedMentions{Parse: []string{}}
	}
	return msg
}

// Notify delivers n to the configured webhook. It makes exactly one attempt.
func (c *Controller) Notify(ctx context.Context, n *sponsorship.Notification) error {
	if c.webhookURL == "" {
		return sponsorship.NewError(sponsorship.KindMissingSecret, "missing discord webhook URL")
	}

	payload, err := json.Marshal(NewMessage(n))
	if err != nil {
		return sponsorship.WrapError(sponsorship.KindDelivery, err, "failed to encode discord message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return sponsorship.WrapError(sponsorship.KindDelivery, err, "failed to create discord request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending notification...", slog.String("title", n.Title))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the webhook URL, which embeds the webhook token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return sponsorship.WrapError(sponsorship.KindDelivery, err, "failed to reach discord")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return sponsorship.NewError(sponsorship.KindDelivery, "discord responded %s: %s", resp.Status, helpers.Truncate(string(body), 256))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("notification delivered", slog.Int("status", resp.StatusCode))
	return nil
}

// LogValue omits the webhook URL, which embeds the webhook token.
func (c *Controller) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", c.webhookURL != ""),
		slog.String("timeout", c.timeout.String()),
	)
}

// loggingRoundTripper traces outbound requests at a level below debug.
type loggingRoundTripper struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// RoundTrip logs the request and response.
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var buf bytes.Buffer
	if req.Body != nil {
		_, _ = io.ReadAll(io.TeeReader(req.Body, &buf))
		req.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))
	}
	var container map[string]any
	_ = json.Unmarshal(buf.Bytes(), &container)
	l.logger.Log(req.Context(), slog.Level(-8), "sending request", slog.String("method", req.Method), slog.String("host", req.URL.Host), slog.Any("body", container))
	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Log(req.Context(), slog.Level(-8), "failed to send request", slog.Any("error", err))
		return nil, err
	}
	l.logger.Log(req.Context(), slog.Level(-8), "received response", slog.String("status", resp.Status))
	return resp, err
}

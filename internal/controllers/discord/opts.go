package discord

import (
	"log/slog"
	"net/http"
	"time"
)

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithWebhookURL sets the destination webhook.
func WithWebhookURL(url string) Option {
	return func(c *Controller) {
		c.webhookURL = url
	}
}

// WithTimeout bounds each delivery. Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.httpClient = client
	}
}

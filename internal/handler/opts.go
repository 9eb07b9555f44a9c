package handler

import (
	"log/slog"

	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/isometry/gh-sponsor-relay/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithLambdaPayloadType sets the lambda payload type for a Handler instance.
func WithLambdaPayloadType(payloadType string) Option {
	return func(h *Handler) {
		h.lambdaPayloadType = payloadType
	}
}

// WithWebhookSecret configures the handler with a webhook secret for request validation.
func WithWebhookSecret(secret string) Option {
	return func(h *Handler) {
		h.webhookSecret = validation.NewWebhookSecret(secret)
	}
}

// WithNotifier sets the sink new sponsorships are relayed to.
func WithNotifier(notifier Notifier) Option {
	return func(h *Handler) {
		h.notifier = notifier
	}
}

// WithDescriptionTemplate sets the template used for notification descriptions.
func WithDescriptionTemplate(description *sponsorship.DescriptionTemplate) Option {
	return func(h *Handler) {
		h.description = description
	}
}

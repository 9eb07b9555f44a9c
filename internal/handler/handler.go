// Package handler provides the sponsorship webhook handler: signature validation, event classification and notification.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/isometry/gh-sponsor-relay/internal/handler/processor"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/models"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/isometry/gh-sponsor-relay/internal/validation"
	"github.com/pkg/errors"
)

// Option is a functional option applied to a Handler during initialization.
type Option func(*Handler)

// Notifier delivers new-sponsor notifications.
type Notifier = processor.Notifier

// Handler processes sponsorship webhook requests. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	logger            *slog.Logger
	webhookSecret     *validation.WebhookSecret
	notifier          Notifier
	description       *sponsorship.DescriptionTemplate
	lambdaPayloadType string

	processors []processor.Processor
}

// NewSponsorshipHandler creates a Handler. It fails with a MissingSecretError when the webhook secret or the notifier is not configured.
func NewSponsorshipHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger: helpers.NewNoopLogger(),
	}
	for _, opt := range options {
		opt(_inst)
	}

	if _inst.webhookSecret == nil || *_inst.webhookSecret == "" {
		return nil, sponsorship.NewError(sponsorship.KindMissingSecret, "missing webhook secret")
	}
	if _inst.notifier == nil {
		return nil, sponsorship.NewError(sponsorship.KindMissingSecret, "missing notifier")
	}
	if _inst.description == nil {
		description, err := sponsorship.NewDescriptionTemplate("")
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default notification template")
		}
		_inst.description = description
	}

	_inst.processors = []processor.Processor{
		processor.NewSignatureValidatorProcessor(_inst.webhookSecret, processor.WithLogger(_inst.logger)),
		processor.NewEventClassifierProcessor(processor.WithLogger(_inst.logger)),
		processor.NewNotifierProcessor(_inst.notifier, _inst.description, processor.WithLogger(_inst.logger)),
	}
	return _inst, nil
}

// Process runs req through signature validation, classification and notification.
// The returned bus always carries the response to send; the error, if any, is for logging only.
func (h *Handler) Process(ctx context.Context, req models.Request) (*sponsorship.Bus, error) {
	bus := sponsorship.NewBus(req.Body, req.Headers)
	h.logger.Debug("processing request...")

	err := processor.Process(ctx, bus, h.processors...)
	bus.Response = models.Response{StatusCode: sponsorship.StatusCode(err)}

	switch {
	case err != nil:
		h.logger.Warn("request failed", slog.Any("error", err), slog.Any("request", bus))
	case bus.Status == sponsorship.Notified:
		h.logger.Info("request handled", slog.Any("request", bus))
	default:
		h.logger.Debug("request handled", slog.Any("request", bus))
	}
	return bus, err
}

// Fail returns the bus for a request that could not be read, so that it is reported like any other failure.
func (h *Handler) Fail(err error) (*sponsorship.Bus, error) {
	bus := sponsorship.NewBus(nil, nil)
	bus.Status = sponsorship.Failed
	bus.Response = models.Response{StatusCode: sponsorship.StatusCode(err)}
	if bus.Response.StatusCode == http.StatusOK {
		bus.Response.StatusCode = http.StatusInternalServerError
	}
	h.logger.Warn("request failed", slog.Any("error", err))
	return bus, err
}

// GetLambdaPayloadType returns the Lambda event shape the handler is deployed behind.
func (h *Handler) GetLambdaPayloadType() string {
	return h.lambdaPayloadType
}

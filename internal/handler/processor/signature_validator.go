package processor

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v68/github"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/isometry/gh-sponsor-relay/internal/validation"
)

type signatureValidatorProcessor struct {
	logger *slog.Logger
	secret *validation.WebhookSecret
}

// NewSignatureValidatorProcessor returns the stage that authenticates the raw body against the webhook secret.
// It runs before anything in the body is trusted, regardless of event type.
func NewSignatureValidatorProcessor(secret *validation.WebhookSecret, opts ...Option) Processor {
	_inst := &signatureValidatorProcessor{secret: secret, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *signatureValidatorProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:signature")
}

func (p *signatureValidatorProcessor) Process(_ context.Context, bus *sponsorship.Bus) error {
	bus.EventType, _ = helpers.Header(bus.Headers, github.EventTypeHeader)
	deliveryID, found := helpers.Header(bus.Headers, github.DeliveryIDHeader)
	if !found {
		helpers.OnceAMinute.Do(func() {
			p.logger.Warn("requests are arriving without a delivery ID")
		})
	}
	bus.DeliveryID = deliveryID

	if err := p.secret.ValidateSignature(bus.Body, bus.Headers); err != nil {
		p.logger.Warn("validating signature", slog.Any("error", err))
		return err
	}
	p.logger.Debug("request body is valid")
	return nil
}

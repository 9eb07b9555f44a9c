package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
)

type notifierProcessor struct {
	logger      *slog.Logger
	notifier    Notifier
	description *sponsorship.DescriptionTemplate
}

// NewNotifierProcessor returns the stage that relays a parsed new sponsorship to notifier.
func NewNotifierProcessor(notifier Notifier, description *sponsorship.DescriptionTemplate, opts ...Option) Processor {
	_inst := &notifierProcessor{notifier: notifier, description: description, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *notifierProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:notifier")
}

func (p *notifierProcessor) Process(ctx context.Context, bus *sponsorship.Bus) error {
	if bus.Event == nil {
		return sponsorship.NewError(sponsorship.KindInvalidPayload, "no parsed event to notify")
	}
	if p.notifier == nil {
		return sponsorship.NewError(sponsorship.KindMissingSecret, "no notifier configured")
	}

	notification, err := sponsorship.NewNotification(bus.Event, p.description)
	if err != nil {
		p.logger.Error("building notification", slog.Any("error", err))
		return sponsorship.WrapError(sponsorship.KindDelivery, err, "failed to build notification")
	}

	if err = p.notifier.Notify(ctx, notification); err != nil {
		p.logger.Warn("delivering notification", slog.Any("error", err))
		return err
	}
	bus.Status = sponsorship.Notified
	p.logger.Info("relayed new sponsorship", slog.Any("event", bus.Event))
	return nil
}

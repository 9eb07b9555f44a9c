package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
)

type eventClassifierProcessor struct {
	logger *slog.Logger
}

// NewEventClassifierProcessor returns the stage that answers pings and parses sponsorship events.
// Only events with the created action are left pending for notification.
func NewEventClassifierProcessor(opts ...Option) Processor {
	_inst := &eventClassifierProcessor{logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *eventClassifierProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:classifier")
}

func (p *eventClassifierProcessor) Process(_ context.Context, bus *sponsorship.Bus) error {
	if bus.EventType == sponsorship.EventPing {
		p.logger.Info("received ping")
		bus.Status = sponsorship.Skipped
		return nil
	}

	event, err := sponsorship.Parse(bus.Body)
	if err != nil {
		p.logger.Warn("parsing webhook payload", slog.Any("error", err))
		return err
	}
	bus.Event = event

	if !event.IsCreated() {
		p.logger.Info("ignoring sponsorship action", slog.String("action", event.Action))
		bus.Status = sponsorship.Skipped
		return nil
	}
	p.logger.Debug("parsed new sponsorship", slog.Any("event", event))
	return nil
}

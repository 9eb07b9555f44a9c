// Package processor provides the stages a webhook request passes through, and the function chaining them.
package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor is a single stage of request processing.
// A stage either fails, settles the request by moving the bus out of the pending status, or leaves it for the next stage.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, bus *sponsorship.Bus) error
}

// Notifier delivers a notification to an external sink.
type Notifier interface {
	Notify(ctx context.Context, n *sponsorship.Notification) error
}

// Process runs bus through processors in order. It stops at the first error or as soon as a stage settles the bus.
// Processors are shared between concurrent requests and must not keep per-request state.
func Process(ctx context.Context, bus *sponsorship.Bus, processors ...Processor) error {
	for _, p := range processors {
		if err := p.Process(ctx, bus); err != nil {
			bus.Status = sponsorship.Failed
			return err
		}
		if bus.Done() {
			return nil
		}
	}
	return nil
}

// WithLogger sets the logger of a processor at construction time.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}

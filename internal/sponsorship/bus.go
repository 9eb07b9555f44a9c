package sponsorship

import (
	"log/slog"

	"github.com/isometry/gh-sponsor-relay/internal/models"
)

// Bus carries a single webhook request through the processing stages.
type Bus struct {
	Body    []byte
	Headers map[string]string

	EventType  string
	DeliveryID string
	Event      *Event
	Status     EventStatus

	Response models.Response
}

// EventStatus represents the outcome of processing a webhook request.
type EventStatus string

const (
	// Pending is the status of a request that has not finished processing.
	Pending EventStatus = "pending"
	// Notified is the status of a new sponsorship that was relayed.
	Notified EventStatus = "notified"
	// Skipped is the status of a ping or an action that is not relayed.
	Skipped EventStatus = "skipped"
	// Failed is the status of a request that terminated with an error.
	Failed EventStatus = "failed"
)

// NewBus returns a pending bus for the given raw request.
func NewBus(body []byte, headers map[string]string) *Bus {
	return &Bus{
		Body:    body,
		Headers: headers,
		Status:  Pending,
	}
}

// Done reports whether a stage has settled the outcome of the request.
func (b *Bus) Done() bool {
	return b.Status != Pending
}

// LogValue returns the request attributes known so far.
func (b *Bus) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.String("status", string(b.Status)))
	if b.EventType != "" {
		attrs = append(attrs, slog.String("eventType", b.EventType))
	}
	if b.DeliveryID != "" {
		attrs = append(attrs, slog.String("deliveryID", b.DeliveryID))
	}
	if b.Event != nil {
		attrs = append(attrs, slog.Any("event", b.Event))
	}
	return slog.GroupValue(attrs...)
}

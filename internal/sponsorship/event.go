// Package sponsorship provides the sponsorship webhook event model, its parser and the notification built from it.
package sponsorship

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

const (
	// EventPing is the event type GitHub sends when a webhook is first registered.
	EventPing = "ping"
	// EventSponsorship is the event type of sponsorship activity.
	EventSponsorship = "sponsorship"
	// ActionCreated is the only sponsorship action that is relayed.
	ActionCreated = "created"
)

// Event is a parsed sponsorship webhook payload.
type Event struct {
	Action      string      `json:"action"`
	Sponsorship Sponsorship `json:"sponsorship"`
}

// Sponsorship holds the sponsor and the tier of a sponsorship.
type Sponsorship struct {
	Sponsor Sponsor `json:"sponsor"`
	Tier    Tier    `json:"tier"`
}

// Sponsor is the account behind a sponsorship.
type Sponsor struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url"`
}

// Tier is the sponsorship tier. MonthlyPriceInDollars is not range-checked.
type Tier struct {
	MonthlyPriceInDollars int64 `json:"monthly_price_in_dollars"`
}

// IsCreated reports whether the event announces a new sponsorship.
func (e *Event) IsCreated() bool {
	return e.Action == ActionCreated
}

// LogValue renders the event without the sponsor profile URL.
func (e *Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("action", e.Action),
		slog.String("sponsor", e.Sponsorship.Sponsor.Login),
		slog.Int64("amount", e.Sponsorship.Tier.MonthlyPriceInDollars),
	)
}

// wireEvent mirrors Event with pointers so that absent and null fields can be told apart from zero values.
type wireEvent struct {
	Action      *string `json:"action"`
	Sponsorship *struct {
		Sponsor *struct {
			Login   *string `json:"login"`
			HTMLURL *string `json:"html_url"`
		} `json:"sponsor"`
		Tier *struct {
			MonthlyPriceInDollars *int64 `json:"monthly_price_in_dollars"`
		} `json:"tier"`
	} `json:"sponsorship"`
}

// Parse decodes a sponsorship event. Every field of Event is required; unknown fields are ignored.
// Any decoding failure or missing field is reported as an InvalidPayloadError.
func Parse(body []byte) (*Event, error) {
	var w wireEvent
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&w); err != nil {
		return nil, WrapError(KindInvalidPayload, err, "failed to decode sponsorship event")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewError(KindInvalidPayload, "trailing data after sponsorship event")
	}

	switch {
	case w.Action == nil:
		return nil, missingField("action")
	case w.Sponsorship == nil:
		return nil, missingField("sponsorship")
	case w.Sponsorship.Sponsor == nil:
		return nil, missingField("sponsorship.sponsor")
	case w.Sponsorship.Sponsor.Login == nil:
		return nil, missingField("sponsorship.sponsor.login")
	case w.Sponsorship.Sponsor.HTMLURL == nil:
		return nil, missingField("sponsorship.sponsor.html_url")
	case w.Sponsorship.Tier == nil:
		return nil, missingField("sponsorship.tier")
	case w.Sponsorship.Tier.MonthlyPriceInDollars == nil:
		return nil, missingField("sponsorship.tier.monthly_price_in_dollars")
	}

	return &Event{
		Action: *w.Action,
		Sponsorship: Sponsorship{
			Sponsor: Sponsor{
				Login:   *w.Sponsorship.Sponsor.Login,
				HTMLURL: *w.Sponsorship.Sponsor.HTMLURL,
			},
			Tier: Tier{
				MonthlyPriceInDollars: *w.Sponsorship.Tier.MonthlyPriceInDollars,
			},
		},
	}, nil
}

func missingField(name string) error {
	return NewError(KindInvalidPayload, "missing field %q", name)
}

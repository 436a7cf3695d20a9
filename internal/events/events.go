// Package events fans out change notifications to admin dashboards and,
// optionally, to a message broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Event is a single change notification.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// Publisher delivers events. Implementations must not block for long;
// callers publish after their transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// New builds an event with payload marshaled to JSON.
func New(typ string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, Payload: b, At: time.Now().UTC()}, nil
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

package event

import (
	"context"
	"time"
)

// Event is a published occurrence.
type Event struct {
	// Topic is the hierarchical event type.
	Topic Topic

	// Payload is event-specific data; may be nil.
	Payload any

	// Source identifies the publisher.
	Source string

	// Timestamp is when the event was created.
	Timestamp time.Time
}

// New creates an event with the current time.
func New(t Topic, payload any) Event {
	return Event{
		Topic:     t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// WithSource returns a copy of the event with Source set.
func (e Event) WithSource(source string) Event {
	e.Source = source
	return e
}

// Handler processes an event.
type Handler func(ctx context.Context, ev Event) error

// Package pubsub provides a generic publish/subscribe event system used for
// record events, saved filter notifications and log fan-out.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
	MatchedEvent EventType = "matched" // a record satisfied a saved filter
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// PublisherFunc adapts a function to Publisher. Publish returns once the
// function does, so nothing is dropped.
type PublisherFunc[T any] func(eventType EventType, payload T)

func (f PublisherFunc[T]) Publish(eventType EventType, payload T) {
	f(eventType, payload)
}

// Package pubsub fans registry and log events out to in-process listeners
// such as the serve command's event logger and version:list --watch.
package pubsub

import (
	"context"
	"time"
)

// EventType is the kind of change an event reports.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event is one published change. Seq increases by one per Publish on the
// same broker, so a listener can tell when it missed deliveries.
type Event[T any] struct {
	Seq       uint64
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels. With no types the channel receives
// every event; otherwise only the listed kinds.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher accepts events for delivery.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

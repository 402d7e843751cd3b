package pubsub

import "context"

// ContinuousListener wraps a broker subscription for consumers that pull
// events one at a time, such as a re-rendering CLI loop or an SSE writer.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to s for the lifetime of ctx, optionally
// limited to the given event types.
func NewContinuousListener[T any](ctx context.Context, s Subscriber[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  s.Subscribe(ctx, types...),
	}
}

// Next blocks until an event arrives. It returns false once the context is
// cancelled or the subscription is closed.
func (l *ContinuousListener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case ev, ok := <-l.ch:
		return ev, ok
	}
}

// Each calls fn for every event of the given types (all types when none are
// given) until the subscription ends.
func Each[T any](ctx context.Context, s Subscriber[T], fn func(Event[T]), types ...EventType) {
	ch := s.Subscribe(ctx, types...)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fn(ev)
		}
	}
}

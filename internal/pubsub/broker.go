package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Option configures a Broker.
type Option func(*brokerOptions)

type brokerOptions struct {
	bufferSize int
	onDrop     func(EventType)
}

// WithBufferSize sets the per-subscriber channel capacity. Values below 1
// are ignored.
func WithBufferSize(n int) Option {
	return func(o *brokerOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithDropHook registers fn to run, under the broker's read lock, each time
// a full subscriber misses an event. fn must not call back into the broker.
func WithDropHook(fn func(EventType)) Option {
	return func(o *brokerOptions) { o.onDrop = fn }
}

type subscription[T any] struct {
	ch    chan Event[T]
	types map[EventType]struct{}
}

func (s *subscription[T]) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Broker delivers each published event to every interested subscriber.
// Publish never blocks: a subscriber whose buffer is full misses the event
// and the drop is counted.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscription[T]]struct{}
	done    chan struct{}
	opts    brokerOptions
	seq     atomic.Uint64
	dropped atomic.Uint64
}

var _ Publisher[int] = (*Broker[int])(nil)
var _ Subscriber[int] = (*Broker[int])(nil)

// NewBroker creates a broker. Subscribers get a 64-event buffer unless
// WithBufferSize says otherwise.
func NewBroker[T any](opts ...Option) *Broker[T] {
	o := brokerOptions{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Broker[T]{
		subs: make(map[*subscription[T]]struct{}),
		done: make(chan struct{}),
		opts: o,
	}
}

// Subscribe returns a channel of events of the given types, or of all types
// when none are given. The channel is closed when ctx is cancelled or the
// broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context, types ...EventType) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{ch: make(chan Event[T], b.opts.bufferSize)}
	if len(types) > 0 {
		sub.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}
	b.subs[sub] = struct{}{}

	go b.unsubscribeOnDone(ctx, sub)
	return sub.ch
}

func (b *Broker[T]) unsubscribeOnDone(ctx context.Context, sub *subscription[T]) {
	select {
	case <-ctx.Done():
	case <-b.done:
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return // Close already closed the channel
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish stamps the event with the next sequence number and offers it to
// every subscriber that wants its type.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return
	}

	event := Event[T]{
		Seq:       b.seq.Add(1),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for sub := range b.subs {
		if !sub.wants(eventType) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
			if b.opts.onDrop != nil {
				b.opts.onDrop(eventType)
			}
		}
	}
}

// Close shuts down the broker and closes every subscriber channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}

func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Published returns the sequence number of the last published event.
func (b *Broker[T]) Published() uint64 {
	return b.seq.Load()
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

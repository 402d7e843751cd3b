package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type versionEvent struct {
	Model   string
	Version int
}

func TestBroker_SubscribeAndPublish(t *testing.T) {
	broker := NewBroker[versionEvent]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)
	require.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(CreatedEvent, versionEvent{Model: "iris", Version: 1})

	for i, ch := range []<-chan Event[versionEvent]{ch1, ch2} {
		select {
		case ev := <-ch:
			require.Equal(t, CreatedEvent, ev.Type, "subscriber %d", i)
			require.Equal(t, "iris", ev.Payload.Model)
			require.Equal(t, 1, ev.Payload.Version)
			require.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_ContextCancellationClosesChannel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullSubscriberDropsAndCounts(t *testing.T) {
	broker := NewBroker[int](WithBufferSize(1))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	broker.Publish(UpdatedEvent, 1)

	done := make(chan struct{})
	go func() {
		broker.Publish(UpdatedEvent, 2)
		broker.Publish(UpdatedEvent, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Publish blocked")
	}

	ev := <-ch
	require.Equal(t, 1, ev.Payload)
	require.Equal(t, uint64(2), broker.Dropped())
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribe after close returns a closed channel")

	broker.Publish(DeletedEvent, "ignored")
}

func TestContinuousListener_Next(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewContinuousListener[string](ctx, broker)

	broker.Publish(CreatedEvent, "first")
	ev, ok := l.Next()
	require.True(t, ok)
	require.Equal(t, "first", ev.Payload)

	cancel()
	_, ok = l.Next()
	require.False(t, ok)
}

func TestEach_StopsOnClose(t *testing.T) {
	broker := NewBroker[int]()

	var (
		mu  sync.Mutex
		got []int
	)
	finished := make(chan struct{})
	go func() {
		Each[int](context.Background(), broker, func(ev Event[int]) {
			mu.Lock()
			got = append(got, ev.Payload)
			mu.Unlock()
		})
		close(finished)
	}()

	require.Eventually(t, func() bool { return broker.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	broker.Publish(CreatedEvent, 7)
	broker.Publish(CreatedEvent, 8)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	broker.Close()
	select {
	case <-finished:
	case <-time.After(time.Second):
		require.Fail(t, "Each did not return after Close")
	}
	require.Equal(t, []int{7, 8}, got)
}

func TestBroker_SubscribeFiltersByType(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deletes := broker.Subscribe(ctx, DeletedEvent)
	all := broker.Subscribe(ctx)

	broker.Publish(CreatedEvent, "v1")
	broker.Publish(DeletedEvent, "champion")

	ev := <-deletes
	require.Equal(t, DeletedEvent, ev.Type)
	require.Equal(t, "champion", ev.Payload)
	require.Equal(t, uint64(2), ev.Seq)

	first, second := <-all, <-all
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, uint64(2), broker.Published())
	require.Zero(t, broker.Dropped(), "filtered events are not drops")
}

func TestBroker_DropHook(t *testing.T) {
	var dropped []EventType
	broker := NewBroker[int](WithBufferSize(1), WithDropHook(func(t EventType) {
		dropped = append(dropped, t)
	}))
	defer broker.Close()

	_ = broker.Subscribe(context.Background())
	broker.Publish(CreatedEvent, 1)
	broker.Publish(UpdatedEvent, 2)
	broker.Publish(DeletedEvent, 3)

	require.Equal(t, []EventType{UpdatedEvent, DeletedEvent}, dropped)
}

func TestWithBufferSize_IgnoresNonPositive(t *testing.T) {
	broker := NewBroker[int](WithBufferSize(0))
	defer broker.Close()
	require.Equal(t, defaultBufferSize, broker.opts.bufferSize)
}

package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublish_DispatchesToAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(slog.Default())

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var seen []string

	handler := func(tag string) Handler {
		return HandlerFunc(func(_ context.Context, event Event) error {
			mu.Lock()
			seen = append(seen, tag+":"+event.EventName())
			mu.Unlock()
			wg.Done()
			return nil
		})
	}
	bus.Subscribe("consumption.saved", handler("a"))
	bus.Subscribe("consumption.saved", handler("b"))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "consumption.saved"})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers were not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", seen)
	}
}

func TestPublish_IgnoresUnrelatedEvents(t *testing.T) {
	bus := NewInMemoryBus(slog.Default())

	called := make(chan struct{}, 1)
	bus.Subscribe("conversation.expired", HandlerFunc(func(context.Context, Event) error {
		called <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "consumption.saved"})

	select {
	case <-called:
		t.Fatal("handler for a different event must not run")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublish_DetachesCancellation(t *testing.T) {
	bus := NewInMemoryBus(slog.Default())

	result := make(chan error, 1)
	bus.Subscribe("conversation.expired", HandlerFunc(func(ctx context.Context, _ Event) error {
		result <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent(), name: "conversation.expired"})

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("handler context must survive publisher cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublishSync_ReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(slog.Default())

	wantErr := errors.New("handler failed")
	var secondCalled bool
	bus.Subscribe("consumption.saved", HandlerFunc(func(context.Context, Event) error {
		return wantErr
	}))
	bus.Subscribe("consumption.saved", HandlerFunc(func(context.Context, Event) error {
		secondCalled = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "consumption.saved"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if secondCalled {
		t.Fatal("dispatch must stop at the first error")
	}
}

package goSession

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}

func TestEventsDisabledReturnsNilDispatcher(t *testing.T) {
	sink := &countingSink{}
	d := newEventDispatcher(EventsConfig{Enabled: false}, sink)
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{Type: EventLogin})
	d.Close()
	if sink.count.Load() != 0 {
		t.Fatal("expected no sink calls")
	}
}

func TestEventsDeliveredBeforeClose(t *testing.T) {
	sink := &countingSink{}
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 8}, sink)
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Type: EventRequestFailed})
	}
	d.Close()
	if got := sink.count.Load(); got != 5 {
		t.Fatalf("expected 5 delivered events, got %d", got)
	}
}

func TestEventsBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	d := newEventDispatcher(EventsConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: "e1"})
	d.Emit(context.Background(), Event{Type: "e2"})

	start := time.Now()
	d.Emit(context.Background(), Event{Type: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestEventsBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	d := newEventDispatcher(EventsConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: "e1"})
	d.Emit(context.Background(), Event{Type: "e2"})

	done := make(chan struct{})
	go func() {
		d.Emit(context.Background(), Event{Type: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{
		Timestamp:     time.Now().UTC(),
		Type:          EventLogin,
		UserID:        "u1",
		CorrelationID: "req-1",
		Success:       true,
	})

	if !buf.Contains(`"event_type":"login"`) {
		t.Fatal("expected JSON line to contain event type")
	}
	if !buf.Contains(`"user_id":"u1"`) {
		t.Fatal("expected JSON line to contain user id")
	}
	if !buf.Contains(`"correlation_id":"req-1"`) {
		t.Fatal("expected JSON line to contain correlation id")
	}
}

func TestEventDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	d := newEventDispatcher(EventsConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	d.Emit(context.Background(), Event{Type: "e1"})
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{Type: "e2"})
}

type ctxBlockingSink struct {
	entered chan struct{}
	exited  chan struct{}
}

func (s *ctxBlockingSink) Emit(ctx context.Context, _ Event) {
	close(s.entered)
	<-ctx.Done()
	close(s.exited)
}

func TestTryEmitNeverBlocksInBlockingMode(t *testing.T) {
	sink := newGateSink()
	d := newEventDispatcher(EventsConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: EventLogin})
	d.Emit(context.Background(), Event{Type: EventLogin})

	done := make(chan bool)
	go func() { done <- d.TryEmit(Event{Type: EventSessionCleared}) }()

	select {
	case queued := <-done:
		if queued {
			t.Fatal("expected TryEmit to report a full buffer")
		}
	case <-time.After(time.Second):
		t.Fatal("TryEmit blocked on a full buffer")
	}
	if d.Dropped() != 1 {
		t.Fatalf("expected 1 dropped event, got %d", d.Dropped())
	}
}

func TestEmitGivesUpWhenContextEnds(t *testing.T) {
	sink := newGateSink()
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 1}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: EventLogin})
	d.Emit(context.Background(), Event{Type: EventLogin})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{Type: EventLogin})
	if d.Dropped() != 1 {
		t.Fatalf("expected abandoned event to count as dropped, got %d", d.Dropped())
	}
}

func TestEventTypeFilter(t *testing.T) {
	sink := NewChannelSink(8)
	d := newEventDispatcher(EventsConfig{
		Enabled:    true,
		BufferSize: 8,
		DropIfFull: true,
		Types:      []EventType{EventLogout},
	}, sink)

	d.Emit(context.Background(), Event{Type: EventLogin})
	d.TryEmit(Event{Type: EventSessionCleared})
	d.Emit(context.Background(), Event{Type: EventLogout})
	d.Close()

	if got := len(sink.Events()); got != 1 {
		t.Fatalf("expected 1 delivered event, got %d", got)
	}
	if e := <-sink.Events(); e.Type != EventLogout {
		t.Fatalf("expected logout event, got %q", e.Type)
	}
	if d.Dropped() != 0 {
		t.Fatal("filtered events must not count as dropped")
	}
}

func TestShutdownDeadlineCancelsSink(t *testing.T) {
	sink := &ctxBlockingSink{entered: make(chan struct{}), exited: make(chan struct{})}
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{Type: EventLogin})
	<-sink.entered
	d.Emit(context.Background(), Event{Type: EventLogout})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	select {
	case <-sink.exited:
	case <-time.After(2 * time.Second):
		t.Fatal("sink context was not cancelled")
	}
	select {
	case <-d.exited:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit")
	}
	if d.Dropped() != 1 {
		t.Fatalf("expected the undelivered event to count as dropped, got %d", d.Dropped())
	}
}

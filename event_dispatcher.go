package goSession

import (
	"context"
	"sync"
	"sync/atomic"
)

// eventDispatcher hands events to the sink from a single worker goroutine.
//
// Emit honours EventsConfig.DropIfFull. TryEmit never waits and is the only
// entry point allowed from store subscribers, which run under the store's
// writer lock: a stalled sink there would stall every later mutation.
type eventDispatcher struct {
	sink  EventSink
	queue chan Event
	block bool
	types map[EventType]struct{}

	stopping chan struct{}
	exited   chan struct{}
	stopOnce sync.Once

	// sinkCtx is passed to the sink and cancelled when a shutdown deadline
	// passes, so a sink blocked on it can let go.
	sinkCtx    context.Context
	cancelSink context.CancelFunc

	dropped atomic.Uint64
}

// newEventDispatcher returns nil when events are disabled; a nil dispatcher
// ignores every call.
func newEventDispatcher(cfg EventsConfig, sink EventSink) *eventDispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &eventDispatcher{
		sink:     sink,
		queue:    make(chan Event, size),
		block:    !cfg.DropIfFull,
		stopping: make(chan struct{}),
		exited:   make(chan struct{}),
	}
	if len(cfg.Types) > 0 {
		d.types = make(map[EventType]struct{}, len(cfg.Types))
		for _, t := range cfg.Types {
			d.types[t] = struct{}{}
		}
	}
	d.sinkCtx, d.cancelSink = context.WithCancel(context.Background())

	go d.run()
	return d
}

func (d *eventDispatcher) run() {
	defer close(d.exited)
	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		case <-d.stopping:
			for {
				select {
				case e := <-d.queue:
					d.deliver(e)
				default:
					return
				}
			}
		}
	}
}

// deliver skips the sink once a shutdown deadline has passed.
func (d *eventDispatcher) deliver(e Event) {
	if d.sinkCtx.Err() != nil {
		d.dropped.Add(1)
		return
	}
	d.sink.Emit(d.sinkCtx, e)
}

// accepts reports whether e should be queued at all. Filtered types are not
// counted as dropped.
func (d *eventDispatcher) accepts(t EventType) bool {
	if d == nil {
		return false
	}
	select {
	case <-d.stopping:
		return false
	default:
	}
	if d.types == nil {
		return true
	}
	_, ok := d.types[t]
	return ok
}

// Emit queues e. In blocking mode it waits for space until ctx is done; an
// event abandoned that way is counted as dropped.
func (d *eventDispatcher) Emit(ctx context.Context, e Event) {
	if !d.accepts(e.Type) {
		return
	}
	if !d.block {
		d.offer(e)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- e:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stopping:
	}
}

// TryEmit queues e only if there is room right now.
func (d *eventDispatcher) TryEmit(e Event) bool {
	if !d.accepts(e.Type) {
		return false
	}
	return d.offer(e)
}

func (d *eventDispatcher) offer(e Event) bool {
	select {
	case d.queue <- e:
		return true
	case <-d.stopping:
		return false
	default:
		d.dropped.Add(1)
		return false
	}
}

// Shutdown stops accepting events and delivers what is buffered. If ctx ends
// first, the sink's context is cancelled, the remaining events are counted as
// dropped, and ctx.Err() is returned without waiting for the worker.
func (d *eventDispatcher) Shutdown(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.stopOnce.Do(func() { close(d.stopping) })
	select {
	case <-d.exited:
		d.cancelSink()
		return nil
	case <-ctx.Done():
		d.cancelSink()
		return ctx.Err()
	}
}

// Close is Shutdown without a deadline.
func (d *eventDispatcher) Close() {
	_ = d.Shutdown(context.Background())
}

func (d *eventDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

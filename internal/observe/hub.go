// Package observe provides the synchronous subscriber hub shared by the state
// containers (session, errorlist, loading).
//
// A Hub serializes mutations of one container: the apply step and the
// notification of every subscriber run under the same writer lock, so a
// persistence flush always completes before the next mutation of that
// container can start.
package observe

import (
	"errors"
	"sort"
	"sync"
)

// Func is a synchronous subscriber. A non-nil error is returned to whoever
// triggered the mutation.
type Func func() error

// Hub holds subscribers for one state container.
type Hub struct {
	writeMu sync.Mutex

	mu   sync.Mutex
	next int
	subs map[int]Func
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn Func) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]Func)
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Mutate runs apply under the writer lock. When apply reports a change,
// every subscriber is notified, in subscription order, before the lock is
// released. Subscriber errors are joined.
func (h *Hub) Mutate(apply func() bool) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if !apply() {
		return nil
	}
	return h.notify()
}

func (h *Hub) notify() error {
	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Func, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	var errs []error
	for _, fn := range fns {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

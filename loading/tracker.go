// Package loading tracks the set of active operation keys used to derive a
// global busy flag.
//
// The tracker is a set, not a multiset. Two operations sharing a key are
// both cleared by the first Stop, so the tracker can report idle while the
// second is still running. Callers that need independent tracking must use a
// key unique to the operation (the api package uses a per-request
// correlation id). A shared key only answers "is any operation of this kind
// running".
package loading

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MrEthical07/goSession/internal/observe"
)

// DefaultKey is used when a caller passes an empty key.
const DefaultKey = "default"

// StoreID is the persistence identity of the loading store.
const StoreID = "loading"

func normalize(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}

// Tracker is a concurrency-safe set of active keys.
type Tracker struct {
	hub observe.Hub

	mu   sync.RWMutex
	keys map[string]struct{}
}

// New returns an idle tracker.
func New() *Tracker {
	return &Tracker{keys: make(map[string]struct{})}
}

// Start marks key active. Starting an active key has no further effect.
func (t *Tracker) Start(key string) error {
	key = normalize(key)
	return t.hub.Mutate(func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.keys[key]; ok {
			return false
		}
		t.keys[key] = struct{}{}
		return true
	})
}

// Stop marks key inactive. Stopping an inactive key is a no-op.
func (t *Tracker) Stop(key string) error {
	key = normalize(key)
	return t.hub.Mutate(func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.keys[key]; !ok {
			return false
		}
		delete(t.keys, key)
		return true
	})
}

// Clear stops every key.
func (t *Tracker) Clear() error {
	return t.hub.Mutate(func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		if len(t.keys) == 0 {
			return false
		}
		t.keys = make(map[string]struct{})
		return true
	})
}

// IsLoadingKey reports whether key is active.
func (t *Tracker) IsLoadingKey(key string) bool {
	key = normalize(key)
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.keys[key]
	return ok
}

// IsLoading reports whether any key is active.
func (t *Tracker) IsLoading() bool {
	return t.Count() > 0
}

// Count returns the number of active keys.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keys)
}

// Keys returns the active keys in sorted order.
func (t *Tracker) Keys() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Subscribe registers a synchronous observer called after every mutation.
func (t *Tracker) Subscribe(fn func() error) func() {
	return t.hub.Subscribe(fn)
}

// WithLoading starts key, runs fn, and stops key on every exit path of fn,
// including a panic. fn's error is returned as is; a failing Stop is joined
// onto it. When Start fails after the key was added (a subscriber failed),
// fn is not run and the key is stopped again.
func WithLoading[T any](t *Tracker, key string, fn func() (T, error)) (result T, err error) {
	if startErr := t.Start(key); startErr != nil {
		var zero T
		if stopErr := t.Stop(key); stopErr != nil {
			return zero, errors.Join(startErr, stopErr)
		}
		return zero, startErr
	}
	defer func() {
		if stopErr := t.Stop(key); stopErr != nil {
			if err == nil {
				err = stopErr
			} else {
				err = errors.Join(err, stopErr)
			}
		}
	}()
	return fn()
}

// WithLoadingDefault is WithLoading using DefaultKey.
func WithLoadingDefault[T any](t *Tracker, fn func() (T, error)) (T, error) {
	return WithLoading(t, DefaultKey, fn)
}

// StoreID returns the persistence identity.
func (t *Tracker) StoreID() string {
	return StoreID
}

type state struct {
	ActiveKeys *[]string `json:"activeKeys"`
}

// MarshalState serializes the active keys.
func (t *Tracker) MarshalState() ([]byte, error) {
	keys := t.Keys()
	return json.Marshal(state{ActiveKeys: &keys})
}

// RestoreState merges a persisted snapshot into the tracker.
func (t *Tracker) RestoreState(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode loading keys: %w", err)
	}
	if s.ActiveKeys == nil {
		return nil
	}
	keys := make(map[string]struct{}, len(*s.ActiveKeys))
	for _, k := range *s.ActiveKeys {
		keys[normalize(k)] = struct{}{}
	}
	t.mu.Lock()
	t.keys = keys
	t.mu.Unlock()
	return nil
}

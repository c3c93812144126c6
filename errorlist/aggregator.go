package errorlist

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/goSession/internal/observe"
)

// StoreID is the persistence identity of the error store.
const StoreID = "errors"

var lastID atomic.Int64

func nextID() int64 {
	return lastID.Add(1)
}

// advancePast moves the shared counter so that the next id is above id.
func advancePast(id int64) {
	for {
		cur := lastID.Load()
		if cur >= id {
			return
		}
		if lastID.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Record is one user-facing error.
type Record struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Status  *int   `json:"status,omitempty"`
}

// HasStatus reports whether the record carries an HTTP status.
func (r Record) HasStatus() bool {
	return r.Status != nil
}

// Aggregator is an insertion-ordered list of error records. It is safe for
// concurrent use.
type Aggregator struct {
	hub observe.Hub

	mu   sync.RWMutex
	list []Record
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Push appends a record without a status and returns its id.
//
// The error is non-nil only when a bound subscriber (persistence) failed; the
// record is appended regardless.
func (a *Aggregator) Push(message string) (int64, error) {
	return a.push(message, nil)
}

// PushStatus appends a record carrying status and returns its id.
func (a *Aggregator) PushStatus(message string, status int) (int64, error) {
	return a.push(message, &status)
}

func (a *Aggregator) push(message string, status *int) (int64, error) {
	var id int64
	err := a.hub.Mutate(func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		id = nextID()
		a.list = append(a.list, Record{ID: id, Message: message, Status: status})
		return true
	})
	return id, err
}

// Remove deletes the record with id. Unknown ids are a no-op.
func (a *Aggregator) Remove(id int64) error {
	return a.hub.Mutate(func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, r := range a.list {
			if r.ID == id {
				a.list = append(a.list[:i:i], a.list[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Clear removes every record.
func (a *Aggregator) Clear() error {
	return a.hub.Mutate(func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		if len(a.list) == 0 {
			return false
		}
		a.list = nil
		return true
	})
}

// List returns a copy of the records, oldest first.
func (a *Aggregator) List() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Record, len(a.list))
	copy(out, a.list)
	return out
}

// HasErrors reports whether the list is non-empty.
func (a *Aggregator) HasErrors() bool {
	return a.Len() > 0
}

// Len returns the number of records.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.list)
}

// Subscribe registers a synchronous observer called after every mutation.
func (a *Aggregator) Subscribe(fn func() error) func() {
	return a.hub.Subscribe(fn)
}

// StoreID returns the persistence identity.
func (a *Aggregator) StoreID() string {
	return StoreID
}

type state struct {
	List *[]Record `json:"list"`
}

// MarshalState serializes the full store state.
func (a *Aggregator) MarshalState() ([]byte, error) {
	list := a.List()
	return json.Marshal(state{List: &list})
}

// RestoreState merges a persisted snapshot into the store. Fields absent from
// data keep their current value. The shared id counter is advanced past the
// largest restored id.
func (a *Aggregator) RestoreState(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode error list: %w", err)
	}
	if s.List == nil {
		return nil
	}

	restored := make([]Record, 0, len(*s.List))
	var maxID int64
	for _, r := range *s.List {
		if r.ID <= 0 {
			continue
		}
		if r.ID > maxID {
			maxID = r.ID
		}
		restored = append(restored, r)
	}
	advancePast(maxID)

	a.mu.Lock()
	a.list = restored
	a.mu.Unlock()
	return nil
}

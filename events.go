package goSession

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType names a client lifecycle event.
type EventType string

// Event types emitted by Client.
const (
	// EventLogin reports every login attempt; Success tells the outcome.
	EventLogin EventType = "login"
	// EventLogout is emitted once the local clear of a logout ran.
	EventLogout EventType = "logout"
	// EventSessionCleared marks a transition from signed in to signed out,
	// whatever caused it.
	EventSessionCleared EventType = "session_cleared"
	// EventRequestFailed is emitted for each failed request of the pipeline.
	EventRequestFailed EventType = "request_failed"
	// EventNavigationRedirect reports a navigation the guard redirected.
	EventNavigationRedirect EventType = "navigation_redirect"
)

func (t EventType) known() bool {
	switch t {
	case EventLogin, EventLogout, EventSessionCleared, EventRequestFailed, EventNavigationRedirect:
		return true
	}
	return false
}

// Event is one client lifecycle record handed to an EventSink.
type Event struct {
	Timestamp     time.Time         `json:"timestamp"`
	Type          EventType         `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Status        int               `json:"status,omitempty"`
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EventSink receives events from the dispatcher goroutine, one at a time.
// ctx is cancelled when Client.Shutdown gives up waiting.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit does nothing.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a buffered channel, mostly for tests.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink returns a ChannelSink with the given buffer, at least 1.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit waits for room in the channel or for ctx to end.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink writes to w. Writes are serialized.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit writes event as one line. Encoding and write errors are ignored.
func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

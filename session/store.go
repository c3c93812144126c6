package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goSession/internal/observe"
)

// StoreID is the persistence identity of the session store.
const StoreID = "auth"

// ErrPartialSession is returned when a caller tries to set a token without a
// user or a user without a token.
var ErrPartialSession = errors.New("session token and user must be set together")

// Store is the single source of truth for "is this client logged in". It is
// safe for concurrent use.
type Store struct {
	hub observe.Hub

	mu    sync.RWMutex
	token string
	user  *User
}

// NewStore returns an empty, unauthenticated store.
func NewStore() *Store {
	return &Store{}
}

// Set atomically replaces token and user. Both must be non-empty.
func (s *Store) Set(token string, user *User) error {
	if token == "" || user == nil || user.ID == "" {
		return ErrPartialSession
	}
	u := cloneUser(user)
	return s.hub.Mutate(func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token == token && s.user != nil && *s.user == *u {
			return false
		}
		s.token = token
		s.user = u
		return true
	})
}

// Clear atomically removes token and user. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	return s.hub.Mutate(func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token == "" && s.user == nil {
			return false
		}
		s.token = ""
		s.user = nil
		return true
	})
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the user, or nil when unauthenticated.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Snapshot returns a consistent copy of token and user.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.token, User: cloneUser(s.user)}
}

// Subscribe registers a synchronous observer called after every mutation.
func (s *Store) Subscribe(fn func() error) func() {
	return s.hub.Subscribe(fn)
}

// StoreID returns the persistence identity.
func (s *Store) StoreID() string {
	return StoreID
}

type state struct {
	Token *string `json:"token"`
	User  *User   `json:"user"`
}

// MarshalState serializes {token, user}, using null for absent values.
func (s *Store) MarshalState() ([]byte, error) {
	snap := s.Snapshot()
	var st state
	if snap.Token != "" {
		st.Token = &snap.Token
	}
	st.User = snap.User
	return json.Marshal(st)
}

// RestoreState merges a persisted snapshot field by field. Keys missing from
// data keep their in-memory value; keys present as null erase it. A result
// that would leave token and user out of step is discarded and the store is
// left empty.
func (s *Store) RestoreState(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, user := s.token, cloneUser(s.user)
	if v, ok := raw["token"]; ok {
		var t *string
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("decode session token: %w", err)
		}
		token = ""
		if t != nil {
			token = *t
		}
	}
	if v, ok := raw["user"]; ok {
		var u *User
		if err := json.Unmarshal(v, &u); err != nil {
			return fmt.Errorf("decode session user: %w", err)
		}
		user = u
	}

	if token == "" || user == nil || user.ID == "" {
		s.token = ""
		s.user = nil
		return nil
	}
	s.token = token
	s.user = user
	return nil
}

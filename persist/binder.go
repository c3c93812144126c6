package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrPersistence marks every failure to read or write durable state.
var ErrPersistence = errors.New("persistence failure")

// KeyPrefix is prepended to a store id to form its durable key.
const KeyPrefix = "store:"

// Key returns the durable key for a store id.
func Key(storeID string) string {
	return KeyPrefix + storeID
}

// Storage is a durable key-value medium that survives process restarts.
// Read returns (nil, nil) when key is absent.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Bindable is a state container the binder can mirror.
type Bindable interface {
	StoreID() string
	MarshalState() ([]byte, error)
	RestoreState(data []byte) error
	Subscribe(fn func() error) (cancel func())
}

// Observer is told about every flush. err is nil on success.
type Observer func(key string, err error)

// Binder attaches durable storage to stores.
type Binder struct {
	storage  Storage
	logger   zerolog.Logger
	observer Observer
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger used for ignored records.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Binder) { b.logger = l }
}

// WithObserver sets a hook called after every flush attempt.
func WithObserver(o Observer) Option {
	return func(b *Binder) { b.observer = o }
}

// NewBinder returns a binder writing to storage.
func NewBinder(storage Storage, opts ...Option) *Binder {
	b := &Binder{
		storage: storage,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind restores store from its durable record, if any, and subscribes a
// synchronous flush to every later mutation. ctx is used for the initial read
// and for every flush; it should live as long as the binding.
func (b *Binder) Bind(ctx context.Context, store Bindable) (func(), error) {
	if b == nil || b.storage == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrPersistence)
	}
	key := Key(store.StoreID())

	data, err := b.storage.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, key, err)
	}
	if len(data) > 0 {
		if err := store.RestoreState(data); err != nil {
			b.logger.Warn().Err(err).Str("key", key).Msg("ignoring unparseable persisted state")
		}
	}

	cancel := store.Subscribe(func() error {
		return b.flush(ctx, key, store)
	})
	return cancel, nil
}

// Flush writes the current state of store immediately.
func (b *Binder) Flush(ctx context.Context, store Bindable) error {
	return b.flush(ctx, Key(store.StoreID()), store)
}

func (b *Binder) flush(ctx context.Context, key string, store Bindable) error {
	err := b.write(ctx, key, store)
	if b.observer != nil {
		b.observer(key, err)
	}
	return err
}

func (b *Binder) write(ctx context.Context, key string, store Bindable) error {
	data, err := store.MarshalState()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, key, err)
	}
	if err := b.storage.Write(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, key, err)
	}
	return nil
}

package goSession

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config is the full client configuration. Start from [DefaultConfig] or
// [LoadConfig] and override fields before passing it to [Builder.WithConfig].
type Config struct {
	API         APIConfig
	Endpoints   EndpointsConfig
	Persistence PersistenceConfig
	Storage     StorageConfig
	Navigation  NavigationConfig
	Messages    MessagesConfig
	Events      EventsConfig
	Metrics     MetricsConfig
}

// APIConfig holds the endpoint root every request path is joined to.
type APIConfig struct {
	BaseURL string
}

// EndpointsConfig names the server paths the client calls itself.
type EndpointsConfig struct {
	Login  string
	Logout string
}

// PersistenceConfig controls which stores are mirrored to durable storage.
//
// The session store is always persisted when Enabled is true. The error and
// loading stores describe in-flight state of one process; they are only
// persisted when PersistTransient is set.
type PersistenceConfig struct {
	Enabled           bool
	PersistTransient  bool
	DropExpiredTokens bool
}

// StorageBackend selects the durable medium.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

// StorageConfig configures the durable medium opened by Build when no
// storage was supplied through [Builder.WithStorage].
type StorageConfig struct {
	Backend     StorageBackend
	SQLitePath  string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// NavigationConfig holds the guard's redirect targets.
type NavigationConfig struct {
	LoginPath         string
	AuthenticatedHome string
	CatchAll          string
}

// MessagesConfig holds user-visible fallback texts.
type MessagesConfig struct {
	Network string
}

// EventsConfig controls the asynchronous event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Types limits delivery to the listed event types. Empty delivers all.
	Types []EventType
}

// MetricsConfig toggles in-process counters and the request latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000/api",
		},
		Endpoints: EndpointsConfig{
			Login:  "/auth/login",
			Logout: "/auth/logout",
		},
		Persistence: PersistenceConfig{
			Enabled:           true,
			PersistTransient:  false,
			DropExpiredTokens: false,
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
		Navigation: NavigationConfig{
			LoginPath:         "/login",
			AuthenticatedHome: "/dashboard",
			CatchAll:          "/",
		},
		Messages: MessagesConfig{
			Network: "Network error",
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: API BaseURL: %w", ErrInvalidConfig, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: API BaseURL must be http or https", ErrInvalidConfig)
		}
	}

	if strings.TrimSpace(c.Endpoints.Login) == "" {
		return fmt.Errorf("%w: Endpoints Login must be set", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Endpoints.Logout) == "" {
		return fmt.Errorf("%w: Endpoints Logout must be set", ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite storage requires SQLitePath", ErrInvalidConfig)
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("%w: redis storage requires RedisAddr", ErrInvalidConfig)
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("%w: RedisDB must be >= 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	for name, p := range map[string]string{
		"LoginPath":         c.Navigation.LoginPath,
		"AuthenticatedHome": c.Navigation.AuthenticatedHome,
		"CatchAll":          c.Navigation.CatchAll,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%w: Navigation %s must start with /", ErrInvalidConfig, name)
		}
	}

	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("Events BufferSize must be > 0"))
	}
	for _, t := range c.Events.Types {
		if !t.known() {
			return fmt.Errorf("%w: unknown event type %q", ErrInvalidConfig, t)
		}
	}

	return nil
}

package goSession

import (
	"fmt"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// envConfig is the flat environment view of Config. Defaults match
// defaultConfig.
type envConfig struct {
	BaseURL           string   `env:"GOSESSION_API_BASE_URL" default:"http://localhost:3000/api"`
	LoginEndpoint     string   `env:"GOSESSION_LOGIN_ENDPOINT" default:"/auth/login"`
	LogoutEndpoint    string   `env:"GOSESSION_LOGOUT_ENDPOINT" default:"/auth/logout"`
	Persist           bool     `env:"GOSESSION_PERSIST" default:"true"`
	PersistTransient  bool     `env:"GOSESSION_PERSIST_TRANSIENT" default:"false"`
	DropExpiredTokens bool     `env:"GOSESSION_DROP_EXPIRED_TOKENS" default:"false"`
	StorageBackend    string   `env:"GOSESSION_STORAGE" default:"memory"`
	SQLitePath        string   `env:"GOSESSION_SQLITE_PATH"`
	RedisAddr         string   `env:"GOSESSION_REDIS_ADDR"`
	RedisDB           int      `env:"GOSESSION_REDIS_DB" default:"0"`
	RedisPrefix       string   `env:"GOSESSION_REDIS_PREFIX"`
	LoginPath         string   `env:"GOSESSION_LOGIN_PATH" default:"/login"`
	AuthenticatedHome string   `env:"GOSESSION_HOME_PATH" default:"/dashboard"`
	NetworkMessage    string   `env:"GOSESSION_NETWORK_MESSAGE" default:"Network error"`
	EventsEnabled     bool     `env:"GOSESSION_EVENTS" default:"false"`
	// Space separated, e.g. "login logout".
	EventTypes        []string `env:"GOSESSION_EVENT_TYPES"`
	MetricsEnabled    bool     `env:"GOSESSION_METRICS" default:"true"`
	LatencyHistograms bool     `env:"GOSESSION_LATENCY_HISTOGRAMS" default:"false"`
}

// LoadConfig reads GOSESSION_* variables, after loading a .env file from the
// working directory when one exists, and overlays them on the defaults. The
// result is validated.
func LoadConfig() (Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	var e envConfig
	if err := env.Load(&e, nil); err != nil {
		return Config{}, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := defaultConfig()
	cfg.API.BaseURL = e.BaseURL
	cfg.Endpoints.Login = e.LoginEndpoint
	cfg.Endpoints.Logout = e.LogoutEndpoint
	cfg.Persistence.Enabled = e.Persist
	cfg.Persistence.PersistTransient = e.PersistTransient
	cfg.Persistence.DropExpiredTokens = e.DropExpiredTokens
	cfg.Storage.Backend = StorageBackend(e.StorageBackend)
	cfg.Storage.SQLitePath = e.SQLitePath
	cfg.Storage.RedisAddr = e.RedisAddr
	cfg.Storage.RedisDB = e.RedisDB
	cfg.Storage.RedisPrefix = e.RedisPrefix
	cfg.Navigation.LoginPath = e.LoginPath
	cfg.Navigation.AuthenticatedHome = e.AuthenticatedHome
	cfg.Messages.Network = e.NetworkMessage
	cfg.Events.Enabled = e.EventsEnabled
	for _, t := range e.EventTypes {
		cfg.Events.Types = append(cfg.Events.Types, EventType(t))
	}
	cfg.Metrics.Enabled = e.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = e.LatencyHistograms

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

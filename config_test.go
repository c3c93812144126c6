package goSession

import (
	"errors"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Persistence.PersistTransient {
		t.Fatal("transient stores must not be persisted by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"https base url", func(c *Config) { c.API.BaseURL = "https://api.example.com" }, true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://api.example.com" }, false},
		{"missing login endpoint", func(c *Config) { c.Endpoints.Login = " " }, false},
		{"missing logout endpoint", func(c *Config) { c.Endpoints.Logout = "" }, false},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = StorageSQLite }, false},
		{"sqlite with path", func(c *Config) {
			c.Storage.Backend = StorageSQLite
			c.Storage.SQLitePath = "state.db"
		}, true},
		{"redis without addr", func(c *Config) { c.Storage.Backend = StorageRedis }, false},
		{"redis negative db", func(c *Config) {
			c.Storage.Backend = StorageRedis
			c.Storage.RedisAddr = "localhost:6379"
			c.Storage.RedisDB = -1
		}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }, false},
		{"relative login path", func(c *Config) { c.Navigation.LoginPath = "login" }, false},
		{"relative home", func(c *Config) { c.Navigation.AuthenticatedHome = "dashboard" }, false},
		{"events zero buffer", func(c *Config) {
			c.Events.Enabled = true
			c.Events.BufferSize = 0
		}, false},
		{"known event types", func(c *Config) { c.Events.Types = []EventType{EventLogin, EventSessionCleared} }, true},
		{"unknown event type", func(c *Config) { c.Events.Types = []EventType{"error_pushed"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid {
				if err == nil {
					t.Fatal("expected invalid config")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GOSESSION_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("GOSESSION_PERSIST_TRANSIENT", "true")
	t.Setenv("GOSESSION_STORAGE", "sqlite")
	t.Setenv("GOSESSION_SQLITE_PATH", "/tmp/state.db")
	t.Setenv("GOSESSION_NETWORK_MESSAGE", "Offline")
	t.Setenv("GOSESSION_EVENT_TYPES", "login logout")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com/v1" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if !cfg.Persistence.PersistTransient || !cfg.Persistence.Enabled {
		t.Fatal("expected persistence flags from environment")
	}
	if cfg.Storage.Backend != StorageSQLite || cfg.Storage.SQLitePath != "/tmp/state.db" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Messages.Network != "Offline" {
		t.Fatalf("unexpected network message %q", cfg.Messages.Network)
	}
	if cfg.Endpoints.Login != "/auth/login" {
		t.Fatalf("expected default login endpoint, got %q", cfg.Endpoints.Login)
	}
	if len(cfg.Events.Types) != 2 || cfg.Events.Types[0] != EventLogin || cfg.Events.Types[1] != EventLogout {
		t.Fatalf("unexpected event types %v", cfg.Events.Types)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("GOSESSION_STORAGE", "redis")
	if _, err := LoadConfig(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

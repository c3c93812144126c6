package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
)

// User seeds one account.
type User struct {
	Email    string
	Password string
}

// Options configures a Server.
type Options struct {
	// Prefix mounts every route under it, e.g. "/api".
	Prefix     string
	Users      []User
	SigningKey []byte
	TokenTTL   time.Duration
	Logger     zerolog.Logger
	// MetricsPath, when set, serves request counters in Prometheus format
	// outside the prefix.
	MetricsPath string
	// Redis, when set, throttles failed logins per email.
	Redis         redis.UniversalClient
	LoginAttempts int
	LoginWindow   time.Duration
}

// Server serves the reference API.
type Server struct {
	echo    *echo.Echo
	tokens  *jwt.Manager
	creds   *credentials
	logger  zerolog.Logger
	metrics *serverMetrics
	limiter *rate.Limiter

	mu      sync.Mutex
	revoked map[string]struct{}
	ids     map[string]string
}

// New builds a Server with the seeded users.
func New(opts Options) (*Server, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if len(opts.SigningKey) == 0 {
		return nil, fmt.Errorf("signing key required")
	}
	tokens, err := jwt.NewManager(jwt.Config{
		TTL:           opts.TokenTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    opts.SigningKey,
		Issuer:        "mock-api",
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		tokens:  tokens,
		creds:   newCredentials(),
		logger:  opts.Logger,
		metrics: newServerMetrics(),
		revoked: make(map[string]struct{}),
		ids:     make(map[string]string),
	}
	if opts.Redis != nil {
		if opts.LoginAttempts <= 0 {
			opts.LoginAttempts = 5
		}
		if opts.LoginWindow <= 0 {
			opts.LoginWindow = 15 * time.Minute
		}
		s.limiter = rate.New(opts.Redis, rate.Config{
			MaxAttempts: opts.LoginAttempts,
			Window:      opts.LoginWindow,
			Prefix:      "mockapi:login:",
		})
	}
	for _, u := range opts.Users {
		id, err := s.creds.add(u.Email, u.Password)
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", u.Email, err)
		}
		s.ids[u.Email] = id
	}

	e.Use(s.metrics.middleware)
	if opts.MetricsPath != "" {
		e.GET(opts.MetricsPath, s.metrics.handler())
	}
	s.registerRoutes(opts.Prefix)
	return s, nil
}

// UserID returns the id assigned to a seeded email.
func (s *Server) UserID(email string) string {
	return s.ids[email]
}

// Handler exposes the server for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting mock api")
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

// Command mock-api serves the reference authentication API for local
// development.
//
//	go run ./cmd/mock-api -addr :3000 -user ada@example.com:secret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/MrEthical07/goSession/internal/mockapi"
)

type userFlags []mockapi.User

func (u *userFlags) String() string {
	names := make([]string, 0, len(*u))
	for _, user := range *u {
		names = append(names, user.Email)
	}
	return strings.Join(names, ",")
}

func (u *userFlags) Set(v string) error {
	email, password, ok := strings.Cut(v, ":")
	if !ok || email == "" || password == "" {
		return fmt.Errorf("user must be email:password, got %q", v)
	}
	*u = append(*u, mockapi.User{Email: email, Password: password})
	return nil
}

func main() {
	_ = godotenv.Load()

	var users userFlags
	var (
		addr        = flag.String("addr", ":3000", "listen address")
		prefix      = flag.String("prefix", "/api", "route prefix")
		key         = flag.String("signing-key", os.Getenv("MOCKAPI_SIGNING_KEY"), "HMAC signing key; MOCKAPI_SIGNING_KEY if empty")
		ttl         = flag.Duration("token-ttl", time.Hour, "issued token lifetime")
		metricsPath = flag.String("metrics-path", "/metrics", "Prometheus endpoint; empty disables it")
		redisAddr   = flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "redis used to throttle failed logins; empty disables throttling")
		attempts    = flag.Int("login-attempts", 5, "failed logins allowed per email and window")
		window      = flag.Duration("login-window", 15*time.Minute, "failed login window")
		logLevel    = flag.String("log-level", "info", "log level")
		logFormat   = flag.String("log-format", "console", "console or json")
	)
	flag.Var(&users, "user", "seed account as email:password (repeatable)")
	flag.Parse()

	log := logging.New(os.Stderr, *logLevel, logging.Format(*logFormat))

	if *key == "" {
		*key = "mock-api-development-signing-key"
		log.Warn().Msg("using built-in development signing key")
	}
	if len(users) == 0 {
		users = userFlags{{Email: "demo@example.com", Password: "demo"}}
		log.Info().Str("email", "demo@example.com").Msg("seeding default demo account")
	}

	opts := mockapi.Options{
		Prefix:        *prefix,
		Users:         users,
		SigningKey:    []byte(*key),
		TokenTTL:      *ttl,
		Logger:        log,
		MetricsPath:   *metricsPath,
		LoginAttempts: *attempts,
		LoginWindow:   *window,
	}
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		opts.Redis = rdb
		log.Info().Str("redis", *redisAddr).Msg("login throttling enabled")
	}

	srv, err := mockapi.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("building mock api")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(*addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("mock api stopped")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
		log.Info().Msg("mock api stopped")
	}
}

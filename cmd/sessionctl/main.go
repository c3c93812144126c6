// Command sessionctl drives a session client from the shell. State is kept
// in durable storage between invocations, so a login survives until logout.
//
//	sessionctl login ada@example.com secret
//	sessionctl whoami
//	sessionctl get /me
//	sessionctl navigate /dashboard
//	sessionctl errors -clear
//	sessionctl logout
//
// Configuration comes from GOSESSION_* variables (see goSession.LoadConfig).
// Without GOSESSION_STORAGE the state lives in a sqlite file under the user
// config directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/logging"
)

const usage = `usage: sessionctl [flags] <command> [args]

commands:
  login <email> <password>   authenticate and store the session
  whoami                     print the stored user and token expiry
  get <path>                 GET path through the request pipeline
  navigate <path>            evaluate the route guard for path
  errors [-clear]            list (or clear) recorded request errors
  logout                     end the session

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "sessionctl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		statePath   = fs.String("state", defaultStatePath(), "sqlite state file used when GOSESSION_STORAGE is unset")
		logLevel    = fs.String("log-level", "warn", "log level")
		logFormat   = fs.String("log-format", "console", "console or json")
		showMetrics = fs.Bool("metrics", false, "print client metrics in Prometheus format on exit")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	log := logging.New(stderr, *logLevel, logging.Format(*logFormat))

	cfg, err := goSession.LoadConfig()
	if err != nil {
		return err
	}
	if _, set := os.LookupEnv("GOSESSION_STORAGE"); !set {
		if err := os.MkdirAll(filepath.Dir(*statePath), 0o700); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
		cfg.Storage.Backend = goSession.StorageSQLite
		cfg.Storage.SQLitePath = *statePath
	}
	// Errors are only useful across invocations when persisted.
	cfg.Persistence.Enabled = true
	cfg.Persistence.PersistTransient = true

	client, err := goSession.New().WithConfig(cfg).WithLogger(log).Build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("closing client")
		}
	}()
	if *showMetrics {
		defer printMetrics(stderr, client)
	}

	if _, err := client.Hydrate(ctx); err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	return dispatch(ctx, client, log, cmd, rest, stdout, stderr)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gosession", "state.db")
}

func dispatch(ctx context.Context, client *goSession.Client, log zerolog.Logger, cmd string, args []string, stdout, stderr io.Writer) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(stderr, "usage: sessionctl login <email> <password>")
			return errUsage
		}
		return login(ctx, client, args[0], args[1], stdout)
	case "whoami":
		return whoami(client, stdout)
	case "get":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "usage: sessionctl get <path>")
			return errUsage
		}
		return get(ctx, client, args[0], stdout)
	case "navigate":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "usage: sessionctl navigate <path>")
			return errUsage
		}
		return navigate(ctx, client, args[0], stdout)
	case "errors":
		return listErrors(client, args, stdout, stderr)
	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "signed out")
		return nil
	default:
		log.Debug().Str("command", cmd).Msg("unknown command")
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return errUsage
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
)

func login(ctx context.Context, client *goSession.Client, email, password string, stdout io.Writer) error {
	if _, err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %s", api.Message(err, ""))
	}
	u := client.CurrentUser()
	fmt.Fprintf(stdout, "signed in as %s (%s)\n", u.Email, u.ID)
	return nil
}

func whoami(client *goSession.Client, stdout io.Writer) error {
	u := client.CurrentUser()
	if u == nil {
		fmt.Fprintln(stdout, "not signed in")
		return nil
	}
	fmt.Fprintf(stdout, "%s (%s)\n", u.Email, u.ID)

	claims, err := jwt.Inspect(client.Session().Token())
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	if time.Now().Before(exp) {
		fmt.Fprintf(stdout, "token expires %s\n", exp.Format(time.RFC3339))
	} else {
		fmt.Fprintf(stdout, "token expired %s\n", exp.Format(time.RFC3339))
	}
	return nil
}

func get(ctx context.Context, client *goSession.Client, path string, stdout io.Writer) error {
	resp, err := client.API().Get(ctx, path)
	if err != nil {
		return fmt.Errorf("GET %s: %s", path, api.Message(err, ""))
	}
	fmt.Fprintf(stdout, "%d\n%s\n", resp.Status, resp.Body)
	return nil
}

func navigate(ctx context.Context, client *goSession.Client, path string, stdout io.Writer) error {
	d, err := client.Navigate(ctx, path)
	if err != nil {
		return err
	}
	if d.Target != "" {
		fmt.Fprintf(stdout, "%s %s\n", d.Action, d.Target)
		return nil
	}
	fmt.Fprintln(stdout, d.Action)
	return nil
}

func listErrors(client *goSession.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("errors", flag.ContinueOnError)
	fs.SetOutput(stderr)
	clearAll := fs.Bool("clear", false, "remove every recorded error")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *clearAll {
		return client.Errors().Clear()
	}
	list := client.Errors().List()
	if len(list) == 0 {
		fmt.Fprintln(stdout, "no errors")
		return nil
	}
	for _, r := range list {
		if r.HasStatus() {
			fmt.Fprintf(stdout, "%d\t%d\t%s\n", r.ID, *r.Status, r.Message)
			continue
		}
		fmt.Fprintf(stdout, "%d\t-\t%s\n", r.ID, r.Message)
	}
	return nil
}

func printMetrics(w io.Writer, client *goSession.Client) {
	_, _ = io.WriteString(w, prometheus.New(client).Render())
}

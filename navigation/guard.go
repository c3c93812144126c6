package navigation

import (
	"net/url"
	"strings"
)

// Default route names, paths and the query parameter carrying the
// post-login destination.
const (
	LoginRouteName = "login"
	LoginPath      = "/login"
	DashboardPath  = "/dashboard"
	HomePath       = "/"
	RedirectParam  = "redirect"
)

// Route is one entry of the route table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	Public       bool
}

// Location is a resolved navigation target.
type Location struct {
	Route    Route
	FullPath string
	Query    url.Values
}

// Action is the outcome of a guard evaluation.
type Action int

const (
	// Allow lets the navigation proceed.
	Allow Action = iota
	// Redirect sends the navigation to Decision.Target instead.
	Redirect
)

// String returns "allow" or "redirect".
func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the result of evaluating a navigation.
type Decision struct {
	Action Action
	// Target is set for Redirect.
	Target string
	// Location is the resolved destination for Allow.
	Location Location
}

func allow(to Location) Decision {
	return Decision{Action: Allow, Location: to}
}

func redirect(target string) Decision {
	return Decision{Action: Redirect, Target: target}
}

// Guard holds the paths the guard redirects to.
type Guard struct {
	LoginPath         string
	AuthenticatedHome string
}

// DefaultGuard redirects to /login and /dashboard.
var DefaultGuard = Guard{LoginPath: LoginPath, AuthenticatedHome: DashboardPath}

// Evaluate applies DefaultGuard.
func Evaluate(to Location, authenticated bool) Decision {
	return DefaultGuard.Evaluate(to, authenticated)
}

// Evaluate returns Redirect to the login path, carrying the original full
// path, when to requires auth and the client is signed out; Redirect to the
// authenticated home when a signed-in client targets the login route; and
// Allow otherwise.
func (g Guard) Evaluate(to Location, authenticated bool) Decision {
	switch {
	case to.Route.RequiresAuth && !authenticated:
		return redirect(g.loginPath() + "?" + RedirectParam + "=" + escapeRedirect(to.FullPath))
	case to.Route.Name == LoginRouteName && authenticated:
		return redirect(g.home())
	default:
		return allow(to)
	}
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return LoginPath
	}
	return g.LoginPath
}

func (g Guard) home() string {
	if g.AuthenticatedHome == "" {
		return DashboardPath
	}
	return g.AuthenticatedHome
}

// escapeRedirect query-escapes a path but keeps slashes readable, so
// /dashboard stays /dashboard.
func escapeRedirect(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// SafeRedirect returns raw when it is a same-origin absolute path and
// fallback otherwise. Protocol-relative forms such as //host and /\host are
// rejected. An empty fallback means /dashboard.
func SafeRedirect(raw, fallback string) string {
	if fallback == "" {
		fallback = DashboardPath
	}
	if !strings.HasPrefix(raw, "/") {
		return fallback
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return fallback
	}
	return raw
}

// RedirectTarget reads the redirect parameter from query and sanitizes it.
func RedirectTarget(query url.Values, fallback string) string {
	return SafeRedirect(query.Get(RedirectParam), fallback)
}

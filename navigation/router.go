package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidRoute   = errors.New("invalid route")
)

// DefaultRoutes is the application route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Path: HomePath},
		{Name: "form", Path: "/form"},
		{Name: LoginRouteName, Path: LoginPath, Public: true},
		{Name: "dashboard", Path: DashboardPath, RequiresAuth: true},
	}
}

// Router resolves paths against a fixed route table. Unknown paths redirect
// to the catch-all target.
type Router struct {
	byPath   map[string]Route
	guard    Guard
	catchAll string
}

// NewRouter validates routes and returns a Router. catchAll defaults to "/".
func NewRouter(routes []Route, guard Guard, catchAll string) (*Router, error) {
	if catchAll == "" {
		catchAll = HomePath
	}
	r := &Router{byPath: make(map[string]Route, len(routes)), guard: guard, catchAll: catchAll}
	names := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		if rt.Name == "" || !strings.HasPrefix(rt.Path, "/") {
			return nil, fmt.Errorf("%w: %q at %q", ErrInvalidRoute, rt.Name, rt.Path)
		}
		if rt.RequiresAuth && rt.Public {
			return nil, fmt.Errorf("%w: %q is both public and protected", ErrInvalidRoute, rt.Name)
		}
		if _, ok := names[rt.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateRoute, rt.Name)
		}
		if _, ok := r.byPath[rt.Path]; ok {
			return nil, fmt.Errorf("%w: path %q", ErrDuplicateRoute, rt.Path)
		}
		names[rt.Name] = struct{}{}
		r.byPath[rt.Path] = rt
	}
	return r, nil
}

// Resolve parses raw and finds its route. ok is false for unknown paths.
func (r *Router) Resolve(raw string) (Location, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return Location{}, false
	}
	path := u.Path
	if path == "" {
		path = HomePath
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	rt, ok := r.byPath[path]
	if !ok {
		return Location{}, false
	}
	full := path
	if u.RawQuery != "" {
		full += "?" + u.RawQuery
	}
	return Location{Route: rt, FullPath: full, Query: u.Query()}, true
}

// Navigate resolves raw and evaluates the guard for it.
func (r *Router) Navigate(raw string, authenticated bool) Decision {
	loc, ok := r.Resolve(raw)
	if !ok {
		return redirect(r.catchAll)
	}
	return r.guard.Evaluate(loc, authenticated)
}

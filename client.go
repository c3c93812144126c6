package goSession

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/errorlist"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/loading"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/persist"
	"github.com/MrEthical07/goSession/session"
)

// Client owns every state container of one application session and the
// request pipeline that mutates them. Methods are safe for concurrent use.
type Client struct {
	config Config
	logger zerolog.Logger
	clock  clockwork.Clock

	session *session.Store
	errors  *errorlist.Aggregator
	loading *loading.Tracker

	api    *api.Client
	router *navigation.Router
	binder *persist.Binder

	metrics *Metrics
	events  *eventDispatcher

	ready     chan struct{}
	readyOnce sync.Once

	unbind  []func()
	closers []func() error
	closed  atomic.Bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// Session returns the session store. After Close, mutations are no longer
// persisted; callers must not use the stores of a closed client.
func (c *Client) Session() *session.Store { return c.session }

// Errors returns the error list fed by the request pipeline.
func (c *Client) Errors() *errorlist.Aggregator { return c.errors }

// Loading returns the busy tracker fed by the request pipeline.
func (c *Client) Loading() *loading.Tracker { return c.loading }

// API returns the request pipeline. Requests fail with ErrClientClosed once
// the client is closed.
func (c *Client) API() *api.Client { return c.api }

// Router returns the route table used by Navigate.
func (c *Client) Router() *navigation.Router { return c.router }

// Hydrate completes startup. Persisted state was already restored by Build;
// Hydrate makes no network call. With DropExpiredTokens, a JWT whose exp has
// passed is discarded. Hydrate marks the client ready, releasing any Navigate
// call waiting for it, and reports whether a session is present.
func (c *Client) Hydrate(ctx context.Context) (bool, error) {
	if c.closed.Load() {
		return false, ErrClientClosed
	}
	var err error
	if c.config.Persistence.DropExpiredTokens {
		if token := c.session.Token(); token != "" && jwt.Expired(token, c.clock.Now()) {
			c.logger.Info().Msg("dropping expired persisted session")
			err = c.session.Clear()
		}
	}
	c.readyOnce.Do(func() { close(c.ready) })
	return c.session.IsAuthenticated(), err
}

// Ready is closed once Hydrate has run.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Login authenticates against the login endpoint and, on success, stores
// token and user together. On failure the session is unchanged and the
// pipeline error is returned.
func (c *Client) Login(ctx context.Context, identifier, secret string) (bool, error) {
	if c.closed.Load() {
		return false, ErrClientClosed
	}

	resp, err := c.api.Post(ctx, c.config.Endpoints.Login, loginRequest{Email: identifier, Password: secret})
	if err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.emit(ctx, Event{Type: EventLogin, Status: api.StatusOf(err), Error: api.Message(err, c.config.Messages.Network)})
		return false, err
	}

	var body loginResponse
	if err := resp.Decode(&body); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		return false, fmt.Errorf("%w: %w", ErrInvalidLoginResponse, err)
	}
	if body.Token == "" || body.User == nil || body.User.ID == "" {
		c.metrics.Inc(MetricLoginFailure)
		return false, fmt.Errorf("%w: missing token or user", ErrInvalidLoginResponse)
	}

	if err := c.session.Set(body.Token, body.User); err != nil {
		return false, err
	}

	c.metrics.Inc(MetricLoginSuccess)
	c.emit(ctx, Event{Type: EventLogin, UserID: body.User.ID, Success: true})
	c.logger.Info().Str("user_id", body.User.ID).Msg("logged in")
	return true, nil
}

// Logout tells the server best-effort and then clears the local session
// whatever the server said. A failed server call is logged, not returned;
// only persistence failures are.
func (c *Client) Logout(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	userID := ""
	if u := c.session.User(); u != nil {
		userID = u.ID
	}

	var persistErr error
	if _, err := c.api.Post(ctx, c.config.Endpoints.Logout, nil); err != nil {
		c.metrics.Inc(MetricLogoutRemoteFailure)
		c.logger.Warn().Err(err).Msg("server logout failed; clearing local session anyway")
		if errors.Is(err, persist.ErrPersistence) {
			persistErr = err
		}
	}

	clearErr := c.session.Clear()
	c.metrics.Inc(MetricLogout)
	c.emit(ctx, Event{Type: EventLogout, UserID: userID, Success: clearErr == nil})
	if persistErr != nil || clearErr != nil {
		return errors.Join(persistErr, clearErr)
	}
	return nil
}

// ClearSession removes token and user. Idempotent.
func (c *Client) ClearSession() error {
	return c.session.Clear()
}

// IsAuthenticated reports whether a token is held.
func (c *Client) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (c *Client) CurrentUser() *session.User {
	return c.session.User()
}

// Navigate evaluates a navigation to rawPath. It blocks until Hydrate has
// run or ctx is done.
func (c *Client) Navigate(ctx context.Context, rawPath string) (navigation.Decision, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return navigation.Decision{}, ctx.Err()
	}

	d := c.router.Navigate(rawPath, c.session.IsAuthenticated())
	if d.Action == navigation.Redirect {
		c.metrics.Inc(MetricNavigationRedirected)
		c.emit(ctx, Event{Type: EventNavigationRedirect, Success: true, Metadata: map[string]string{
			"from": rawPath,
			"to":   d.Target,
		}})
		c.logger.Debug().Str("from", rawPath).Str("to", d.Target).Msg("navigation redirected")
		return d, nil
	}
	c.metrics.Inc(MetricNavigationAllowed)
	return d, nil
}

// LoginRedirect returns the sanitized post-login destination taken from the
// redirect query parameter.
func (c *Client) LoginRedirect(query url.Values) string {
	return navigation.RedirectTarget(query, c.config.Navigation.AuthenticatedHome)
}

// MetricsSnapshot copies the client counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// EventsDropped counts events discarded because the dispatcher buffer was
// full, the emitting context ended, or Shutdown timed out.
func (c *Client) EventsDropped() uint64 {
	return c.events.Dropped()
}

// Close is Shutdown without a deadline.
func (c *Client) Close() error {
	return c.Shutdown(context.Background())
}

// Shutdown rejects further requests, detaches persistence, closes storage
// opened by Build and delivers pending events until ctx ends. In-memory state
// is kept; durable state is already flushed. Only the first call does work.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	eventsErr := c.events.Shutdown(ctx)
	if eventsErr != nil {
		c.logger.Warn().Err(eventsErr).Msg("pending events abandoned")
	}
	return errors.Join(c.release(), eventsErr)
}

func (c *Client) release() error {
	for _, cancel := range c.unbind {
		cancel()
	}
	c.unbind = nil
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Client) emit(ctx context.Context, e Event) {
	if c.events == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.clock.Now()
	}
	if e.CorrelationID == "" && ctx != nil {
		e.CorrelationID = api.CorrelationID(ctx)
	}
	c.events.Emit(ctx, e)
}

// emitLocked is emit for callers holding a store lock. It never waits.
func (c *Client) emitLocked(e Event) {
	if c.events == nil {
		return
	}
	e.Timestamp = c.clock.Now()
	c.events.TryEmit(e)
}

// trackSessionClears counts and reports every transition from signed in to
// signed out, whichever path caused it.
func (c *Client) trackSessionClears() {
	prev := ""
	if u := c.session.User(); u != nil {
		prev = u.ID
	}
	c.session.Subscribe(func() error {
		cur := ""
		if u := c.session.User(); u != nil {
			cur = u.ID
		}
		if prev != "" && cur == "" {
			c.metrics.Inc(MetricSessionCleared)
			c.emitLocked(Event{Type: EventSessionCleared, UserID: prev, Success: true})
		}
		prev = cur
		return nil
	})
}

// closedGuard fails every request once the client is closed, before any
// other interceptor touches a store.
func (c *Client) closedGuard() api.Interceptor {
	return api.Hooks{
		Before: func(ctx context.Context, _ *http.Request) (context.Context, error) {
			if c.closed.Load() {
				return ctx, ErrClientClosed
			}
			return ctx, nil
		},
	}
}

// instrumentation counts outcomes and latency of every request.
func (c *Client) instrumentation() api.Interceptor {
	observe := func(ctx context.Context) {
		if start, ok := requestStartFromContext(ctx); ok {
			c.metrics.Observe(MetricRequestLatency, c.clock.Since(start))
		}
	}
	return api.Hooks{
		Before: func(ctx context.Context, _ *http.Request) (context.Context, error) {
			return withRequestStart(ctx, c.clock.Now()), nil
		},
		After: func(ctx context.Context, _ *api.Response) error {
			observe(ctx)
			c.metrics.Inc(MetricRequestSuccess)
			return nil
		},
		Error: func(ctx context.Context, err error) error {
			observe(ctx)
			c.metrics.Inc(MetricRequestFailure)
			var netErr *api.NetworkError
			switch {
			case errors.Is(err, api.ErrUnauthorized):
				c.metrics.Inc(MetricRequestUnauthorized)
			case errors.As(err, &netErr):
				c.metrics.Inc(MetricRequestNetworkError)
			}
			c.emit(ctx, Event{
				Type:   EventRequestFailed,
				Status: api.StatusOf(err),
				Error:  api.Message(err, c.config.Messages.Network),
			})
			return nil
		},
	}
}

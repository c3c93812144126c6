package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Interceptor observes one request. BeforeRequest may return a derived
// context that is used for the attempt and passed to the later hooks.
type Interceptor interface {
	BeforeRequest(ctx context.Context, req *http.Request) (context.Context, error)
	AfterResponse(ctx context.Context, resp *Response) error
	OnError(ctx context.Context, err error) error
}

// Hooks adapts optional functions to Interceptor. Nil fields are skipped.
type Hooks struct {
	Before func(ctx context.Context, req *http.Request) (context.Context, error)
	After  func(ctx context.Context, resp *Response) error
	Error  func(ctx context.Context, err error) error
}

// BeforeRequest calls Before when set.
func (h Hooks) BeforeRequest(ctx context.Context, req *http.Request) (context.Context, error) {
	if h.Before == nil {
		return ctx, nil
	}
	return h.Before(ctx, req)
}

// AfterResponse calls After when set.
func (h Hooks) AfterResponse(ctx context.Context, resp *Response) error {
	if h.After == nil {
		return nil
	}
	return h.After(ctx, resp)
}

// OnError calls Error when set.
func (h Hooks) OnError(ctx context.Context, err error) error {
	if h.Error == nil {
		return nil
	}
	return h.Error(ctx, err)
}

// Marker marks keys busy. *loading.Tracker satisfies it.
type Marker interface {
	Start(key string) error
	Stop(key string) error
}

// TokenSource yields the current bearer token, "" when signed out.
type TokenSource interface {
	Token() string
}

// ErrorRecorder records user-visible failures. *errorlist.Aggregator
// satisfies it.
type ErrorRecorder interface {
	Push(message string) (int64, error)
	PushStatus(message string, status int) (int64, error)
}

// Clearer discards the session.
type Clearer interface {
	Clear() error
}

// CorrelationPrefix prefixes every minted correlation id.
const CorrelationPrefix = "req-"

// NewCorrelationID mints an id unique to one call.
func NewCorrelationID() string {
	return CorrelationPrefix + uuid.NewString()
}

// LoadingInterceptor marks each request busy under a correlation id minted
// for that call. An id already on the caller's context is shadowed, never
// reused, so concurrent requests sharing a context keep distinct keys.
func LoadingInterceptor(m Marker) Interceptor {
	stop := func(ctx context.Context) error {
		if id := CorrelationID(ctx); id != "" {
			return m.Stop(id)
		}
		return nil
	}
	return Hooks{
		Before: func(ctx context.Context, _ *http.Request) (context.Context, error) {
			id := NewCorrelationID()
			ctx = WithCorrelationID(ctx, id)
			if err := m.Start(id); err != nil {
				// Do skips OnError for the hook that failed, so undo here.
				if stopErr := m.Stop(id); stopErr != nil {
					return ctx, errors.Join(err, stopErr)
				}
				return ctx, err
			}
			return ctx, nil
		},
		After: func(ctx context.Context, _ *Response) error { return stop(ctx) },
		Error: func(ctx context.Context, _ error) error { return stop(ctx) },
	}
}

// BearerInterceptor attaches the current token, if any.
func BearerInterceptor(src TokenSource) Interceptor {
	return Hooks{
		Before: func(ctx context.Context, req *http.Request) (context.Context, error) {
			if token := src.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return ctx, nil
		},
	}
}

// ErrorInterceptor records one message per failed request. Only HTTP and
// network failures are recorded; networkMessage replaces the transport text.
func ErrorInterceptor(rec ErrorRecorder, networkMessage string) Interceptor {
	return Hooks{
		Error: func(_ context.Context, err error) error {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				_, pushErr := rec.PushStatus(httpErr.Message, httpErr.Status)
				return pushErr
			}
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				_, pushErr := rec.Push(Message(err, networkMessage))
				return pushErr
			}
			return nil
		},
	}
}

// UnauthorizedInterceptor clears the session on any 401, whatever the
// endpoint.
func UnauthorizedInterceptor(c Clearer) Interceptor {
	return Hooks{
		Error: func(_ context.Context, err error) error {
			if errors.Is(err, ErrUnauthorized) {
				return c.Clear()
			}
			return nil
		},
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Request describes one call. Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Response is a successful (2xx) answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	HTTPClient   *http.Client
	Logger       zerolog.Logger
	Interceptors []Interceptor
}

// Client sends requests through an ordered interceptor chain.
type Client struct {
	baseURL      string
	http         *http.Client
	logger       zerolog.Logger
	interceptors []Interceptor
}

// New returns a Client. A nil HTTPClient means a client with no timeout.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	chain := make([]Interceptor, len(opts.Interceptors))
	copy(chain, opts.Interceptors)
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		http:         hc,
		logger:       opts.Logger,
		interceptors: chain,
	}
}

// Use appends interceptors to the chain. Not safe to call concurrently with Do.
func (c *Client) Use(in ...Interceptor) {
	c.interceptors = append(c.interceptors, in...)
}

// Get is shorthand for Do with GET.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post is shorthand for Do with POST and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Do performs exactly one HTTP attempt.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	req, err := c.build(ctx, r)
	if err != nil {
		return nil, err
	}

	traceID := CorrelationID(ctx)
	ran := 0
	var beforeErr error
	for _, in := range c.interceptors {
		next, err := in.BeforeRequest(ctx, req)
		if next != nil {
			ctx = next
		}
		if err != nil {
			beforeErr = err
			break
		}
		ran++
	}
	hooks := c.interceptors[:ran]
	if beforeErr != nil {
		return nil, withSideEffects(beforeErr, c.onError(ctx, hooks, beforeErr))
	}
	req = req.WithContext(ctx)

	logCtx := c.logger.With().Str("correlation_id", CorrelationID(ctx)).Str("method", req.Method).Str("path", r.Path)
	if traceID != "" && traceID != CorrelationID(ctx) {
		logCtx = logCtx.Str("trace_id", traceID)
	}
	log := logCtx.Logger()

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Cause: err}
		log.Debug().Err(err).Msg("request failed without response")
		return nil, withSideEffects(netErr, c.onError(ctx, hooks, netErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Cause: fmt.Errorf("read body: %w", err)}
		log.Debug().Err(err).Int("status", resp.StatusCode).Msg("reading response body failed")
		return nil, withSideEffects(netErr, c.onError(ctx, hooks, netErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Status:  resp.StatusCode,
			Message: messageFromBody(resp.StatusCode, body),
			Body:    body,
		}
		log.Debug().Int("status", resp.StatusCode).Str("message", httpErr.Message).Msg("request failed")
		return nil, withSideEffects(httpErr, c.onError(ctx, hooks, httpErr))
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	log.Debug().Int("status", resp.StatusCode).Msg("request completed")

	var hookErrs []error
	for _, in := range hooks {
		if err := in.AfterResponse(ctx, out); err != nil {
			hookErrs = append(hookErrs, err)
		}
	}
	if len(hookErrs) > 0 {
		return out, errors.Join(hookErrs...)
	}
	return out, nil
}

func (c *Client) onError(ctx context.Context, hooks []Interceptor, cause error) error {
	var errs []error
	for _, in := range hooks {
		if err := in.OnError(ctx, cause); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withSideEffects keeps primary as the returned error's identity when no
// interceptor failed.
func withSideEffects(primary, sideEffects error) error {
	if sideEffects == nil {
		return primary
	}
	return errors.Join(primary, sideEffects)
}

func (c *Client) build(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %w", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(r.Path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c.baseURL == "" {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

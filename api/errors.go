package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *HTTPError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRequest is returned when a request cannot be built.
	ErrInvalidRequest = errors.New("invalid request")
)

// HTTPError is returned when the server answered with a non-2xx status.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Is reports ErrUnauthorized for a 401.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

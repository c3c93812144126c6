package goSession

import "errors"

var (
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLoginResponse is returned when a 2xx login response lacks a
	// token or a user. The session is left untouched.
	ErrInvalidLoginResponse = errors.New("invalid login response")
	// ErrClientClosed is returned by operations on a closed Client.
	ErrClientClosed = errors.New("client closed")
	// ErrBuilderUsed is returned by a second Build on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
)

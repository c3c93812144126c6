package rate

import "errors"

var (
	// ErrRateLimited is returned once a subject exhausted its attempts.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps every Redis failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

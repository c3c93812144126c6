// Package rate provides a Redis-backed fixed-window attempt limiter.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// {prefix}{subject}.
//
// # What this package must NOT do
//
//   - Decide what a subject is. Callers pick the key (an email, an IP).
//   - Fail open. Redis errors are returned as ErrRedisUnavailable.
package rate

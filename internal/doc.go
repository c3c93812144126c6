// Package internal groups packages that are private to goSession.
//
// # Sub-packages
//
//   - observe: synchronous subscriber hub shared by the state containers
//   - mockapi: reference authentication API for tests and the mock-api binary
//   - rate: Redis-backed fixed-window attempt limiter used by mockapi
//   - logging: zerolog construction for the binaries
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
package internal

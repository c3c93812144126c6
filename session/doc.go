// Package session holds the client's authentication state: the bearer token
// and the user identity it belongs to.
//
// # Invariants
//
// A session is authenticated exactly when a token is present. Token and user
// are written together by [Store.Set] and erased together by [Store.Clear];
// no other mutator exists, so a partial session is never observable. A
// persisted snapshot that would restore a partial session is discarded.
//
// # Architecture boundaries
//
// This package owns the in-memory [Store] and the [Session] model. It does NOT
// perform network calls, parse JWTs, or decide navigation; login, logout and
// guard evaluation live in the root package and read or write the store
// through its methods.
//
// # What this package must NOT do
//
//   - Import goSession, api, or persist (no upward imports).
//   - Write durable storage itself. Persistence is attached by persist.Binder
//     through [Store.Subscribe].
package session

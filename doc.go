// Package goSession is the client-side session and request orchestration
// core for applications that talk to an authenticated HTTP API.
//
// A [Client] owns three state containers: the session (token and user), the
// loading set and the error list. It drives every network call through one
// ordered pipeline. [Builder.Build] constructs each container once, restores
// durable state before the client is handed out, and wires the pipeline:
//
//	client, err := goSession.New().
//		WithConfig(cfg).
//		WithLogger(logger).
//		Build(ctx)
//	authenticated, err := client.Hydrate(ctx)
//	decision, err := client.Navigate(ctx, "/dashboard")
//
// Methods are safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// goSession is the composition root. Containers live in errorlist, loading
// and session; durable mirroring in persist; the HTTP pipeline in api; the
// route guard in navigation. None of those import goSession.
//
// # What this package must NOT do
//
//   - Hold package-level state containers. Every container belongs to one Client.
//   - Retry requests or impose timeouts. The caller's context is the only limit.
//   - Recover persistence failures. They are returned from the action that
//     triggered them.
package goSession

// Package jwt reads and issues the bearer tokens carried by a session.
//
// The client side never verifies signatures: it cannot hold the server's key.
// [Inspect] decodes claims without verification so the client can tell an
// expired token from a live one at hydration time. [Manager] signs and verifies
// tokens and backs the reference API used in tests and the mock-api binary.
package jwt

// Package mockapi is a small reference implementation of the authentication
// API a session client talks to. It backs the integration tests and the
// mock-api binary.
//
// Routes, relative to the mount prefix:
//
//	POST /auth/login   {"email","password"} -> 200 {"token","user":{"id","email"}}
//	POST /auth/logout  bearer required -> 204, token revoked
//	GET  /me           bearer required -> 200 {"id","email"}
//	ANY  /fail/:status -> :status {"message":"..."}
//
// Failures carry a JSON body with a "message" field. With a Redis client in
// Options, repeated failed logins for one email answer 429 until the window
// expires.
package mockapi

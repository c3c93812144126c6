// Package api is the HTTP request pipeline shared by every network call a
// session client makes.
//
// # Pipeline
//
// [Client.Do] runs an ordered [Interceptor] chain around one HTTP attempt.
// BeforeRequest hooks run in registration order. After the attempt, either
// AfterResponse or OnError runs over the same hooks, again in registration
// order, skipping any hook whose BeforeRequest failed or never ran. The
// built-in chain, in order, is:
//
//  1. [LoadingInterceptor]: mints a correlation id, marks it busy, and
//     unmarks it on every outcome.
//  2. [BearerInterceptor]: attaches "Authorization: Bearer <token>".
//  3. [ErrorInterceptor]: records a human readable message for the failure.
//  4. [UnauthorizedInterceptor]: clears the session on any 401.
//
// # Failure model
//
// A response with a non-2xx status is an [*HTTPError]; a transport failure is
// a [*NetworkError]. A 401 matches [ErrUnauthorized] via errors.Is. Failures
// of interceptor side effects (for example a persistence failure while
// clearing the session) are joined onto the returned error.
//
// There is exactly one attempt per call: no retries and no client-imposed
// timeout. Cancellation is whatever the caller's context provides.
//
// # What this package must NOT do
//
//   - Own session, loading or error state. It reaches them through small
//     interfaces supplied by the caller.
//   - Interpret response bodies beyond the error message fields.
package api

// Package navigation decides whether a navigation attempt may proceed given
// the current session.
//
// [Evaluate] is a pure function of the target location and whether the
// client is authenticated. [Router] resolves raw paths against a route table
// and applies the guard. [SafeRedirect] sanitizes the post-login target taken
// from the "redirect" query parameter.
package navigation

// Package errorlist provides the ordered collection of user-facing error
// records that a presentation layer renders as dismissible banners.
//
// # Identity
//
// Record IDs come from a single process-wide counter shared by every
// [Aggregator]. IDs start at 1, strictly increase, and are never reused,
// including after records are restored from durable storage.
//
// # What this package must NOT do
//
//   - Expire records on its own; records leave only through Remove or Clear.
//   - Translate or format messages. Callers push plain, already localized strings.
package errorlist

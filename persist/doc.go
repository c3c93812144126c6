// Package persist mirrors state containers to durable storage and restores
// them at construction.
//
// # Layout
//
// Each bound store owns one record at key "store:{id}" holding the JSON of
// its full state. The record is read once, when the store is bound, and
// overwritten synchronously after every mutation.
//
// # Failure model
//
// A failed read at bind time, or a failed serialization or write after a
// mutation, is wrapped with [ErrPersistence] and returned to the caller that
// triggered it. The binder does not retry, buffer, or swallow these errors:
// durable state that cannot be written is treated as fatal by the caller. An
// unparseable record at bind time is logged and ignored, leaving the store at
// its initial state.
//
// # Backends
//
//   - [MemoryStorage]: process local, for tests and ephemeral clients.
//   - [RedisStorage]: go-redis.
//   - [GormStorage]: gorm with the sqlite driver.
//
// # What this package must NOT do
//
//   - Know any concrete store type. Stores are reached through [Bindable].
//   - Flush asynchronously or batch writes.
package persist

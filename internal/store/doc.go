// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. Every task-scoped operation takes the
// owning user's ID and applies it as a mandatory predicate.
package store

// Package sqlite provides the SQLite-backed EntryStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The entries table carries UNIQUE(namespace, content_hash); CreateEntry relies on
// it to make dedup atomic across processes sharing the database.
//
// # Data Location
//
// By default, the database is stored at ~/.supportly/data/entries.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

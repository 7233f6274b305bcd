// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ResourceStore: Resource and chunk persistence
//   - ChatLog: Conversation message persistence
//   - LinkStore: Context link persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Deleting a resource cascades to its chunks; deleting a chunk or a message
// cascades to its context links. Foreign keys are enabled on every pooled
// connection through the DSN.
//
// # Data Location
//
// By default, the database is stored at ~/.ltmc/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Multi-row writes run in a single transaction bound to
// the caller's context, so cancellation rolls them back in full.
package sqlite

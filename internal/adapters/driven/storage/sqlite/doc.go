// Package sqlite provides a SQLite-based implementation of the fatwa and
// category store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database:
//
//   - FatwaStore: Fatwa persistence, FTS5 text matching and LIKE pattern matching
//   - CategoryStore: Category nodes and their fatwa membership lists
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The fatwas_fts virtual table is kept in step with the fatwas table by triggers.
//
// # Data Location
//
// By default, the database is stored at ~/.mufti/data/mufti.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

// Package storage owns the SQLite data file shared with a passive cloud-sync
// client.
//
// Open applies a write-ahead-log durability mode so the primary file is never
// held under an exclusive whole-file lock and committed writes survive a
// crash. The Engine exposes point statements, row queries, and scoped
// transactions; it also folds the write-ahead log back into the primary file
// on a timer (passive) and on demand (truncate), the latter before shutdown
// and before integrity checks so sync tools observe one consistent file.
//
// The Engine assumes a single writer process. Cross-process exclusion is the
// job of the processlock package.
package storage

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Schema is a versioned DDL script owned by a domain package.
type Schema struct {
	Version int
	SQL     string
}

// EnsureSchema creates the schema on an empty database and otherwise
// verifies the recorded version.
func (e *Engine) EnsureSchema(ctx context.Context, schema Schema) error {
	var tableExists int
	err := e.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return e.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "CREATE TABLE schema_version (version INTEGER NOT NULL)"); err != nil {
				return fmt.Errorf("create schema_version: %w", err)
			}
			if _, err := tx.ExecContext(ctx, schema.SQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schema.Version); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		})
	}

	var version int
	if err := e.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schema.Version {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schema.Version)
	}
	return nil
}

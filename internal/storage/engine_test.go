package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filmtrack/internal/storage"
)

const testSchema = `
CREATE TABLE widgets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func openEngine(t *testing.T) *storage.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "film.db")
	engine, err := storage.Open(context.Background(), storage.Options{
		Path:                   path,
		Synchronous:            "NORMAL",
		BusyTimeout:            time.Second,
		CacheSizeKiB:           2000,
		PageSize:               4096,
		WALAutocheckpointPages: 1000,
	})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close(context.Background()) })
	if err := engine.EnsureSchema(context.Background(), storage.Schema{Version: 1, SQL: testSchema}); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return engine
}

func TestOpenUsesWriteAheadLog(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()

	var mode string
	if err := engine.QueryRow(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
	var fk int
	if err := engine.QueryRow(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys enabled")
	}
	var locking string
	if err := engine.QueryRow(ctx, "PRAGMA locking_mode").Scan(&locking); err != nil {
		t.Fatalf("locking_mode: %v", err)
	}
	if locking != "normal" {
		t.Fatalf("expected normal locking mode, got %q", locking)
	}
}

func TestOpenRejectsUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "film.db")
	_, err := storage.Open(context.Background(), storage.Options{Path: path})
	if !errors.Is(err, storage.ErrNotWritable) {
		t.Fatalf("expected ErrNotWritable, got %v", err)
	}
}

func TestOpenLogsBadTuningWithoutFailing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.db")
	engine, err := storage.Open(context.Background(), storage.Options{Path: path, Synchronous: "NOT-A-MODE"})
	if err != nil {
		t.Fatalf("expected bad tuning pragma to be non-fatal, got %v", err)
	}
	_ = engine.Close(context.Background())
}

func TestExecReportsRowsAndInsertID(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()

	res, err := engine.Exec(ctx, "INSERT INTO widgets (name) VALUES (?)", "ektar")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.RowsAffected != 1 || res.LastInsertID == 0 {
		t.Fatalf("unexpected exec result %+v", res)
	}

	rows, err := engine.Query(ctx, "SELECT name FROM widgets ORDER BY id")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, name)
	}
	if len(names) != 1 || names[0] != "ektar" {
		t.Fatalf("unexpected rows %v", names)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()

	boom := errors.New("abort mid-group")
	err := engine.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO widgets (name) VALUES ('a')"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO widgets (name) VALUES ('b')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected abort error, got %v", err)
	}
	var count int
	if err := engine.QueryRow(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows after rollback, got %d", count)
	}
}

func TestWithTxRollsBackOnConstraintFailure(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()

	err := engine.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO widgets (name) VALUES ('dup')"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO widgets (name) VALUES ('dup')")
		return err
	})
	if err == nil {
		t.Fatal("expected unique constraint failure")
	}
	var count int
	if err := engine.QueryRow(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows after rollback, got %d", count)
	}
}

func TestWithTxRefusesCancelledContext(t *testing.T) {
	engine := openEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := engine.WithTx(ctx, func(*sql.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("transaction body ran for a cancelled caller")
	}
}

func TestWithTxCompletesAfterCallerCancels(t *testing.T) {
	engine := openEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := engine.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO widgets (name) VALUES ('first')"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("expected commit despite cancellation, got %v", err)
	}
	var count int
	if err := engine.QueryRow(context.Background(), "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed row, got %d", count)
	}
}

func TestEnsureSchemaDetectsVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.db")
	ctx := context.Background()
	engine, err := storage.Open(ctx, storage.Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := engine.EnsureSchema(ctx, storage.Schema{Version: 1, SQL: testSchema}); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := engine.EnsureSchema(ctx, storage.Schema{Version: 1, SQL: testSchema}); err != nil {
		t.Fatalf("second ensure with same version: %v", err)
	}
	err = engine.EnsureSchema(ctx, storage.Schema{Version: 2, SQL: testSchema})
	if !errors.Is(err, storage.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	_ = engine.Close(ctx)
}

func TestCloseTruncatesWriteAheadLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.db")
	ctx := context.Background()
	engine, err := storage.Open(ctx, storage.Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := engine.EnsureSchema(ctx, storage.Schema{Version: 1, SQL: testSchema}); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := engine.Exec(ctx, "INSERT INTO widgets (name) VALUES ('portra')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := engine.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := engine.Close(ctx); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if info, err := os.Stat(path + "-wal"); err == nil && info.Size() != 0 {
		t.Fatalf("expected empty or absent wal after close, size=%d", info.Size())
	}
}

func TestIsBusy(t *testing.T) {
	if storage.IsBusy(nil) {
		t.Fatal("nil error is not busy")
	}
	if !storage.IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("expected busy message to be recognized")
	}
	if storage.IsBusy(errors.New("constraint failed")) {
		t.Fatal("constraint error is not busy")
	}
}

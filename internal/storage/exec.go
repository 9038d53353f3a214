package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const sqliteBusyCode = 5

// ExecResult reports the effect of a mutating statement.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IsBusy reports whether err is SQLite's busy/locked condition, which a
// caller may retry once the other writer finishes.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Result converts a driver result, tolerating drivers that omit either value.
func Result(res sql.Result) ExecResult {
	var out ExecResult
	if res == nil {
		return out
	}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out
}

// Exec runs a mutating statement outside any transaction.
func (e *Engine) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return ExecResult{}, err
	}
	return Result(res), nil
}

// Query returns rows in the order the statement produces them. The caller
// must close the rows before issuing another statement.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

// QueryRow runs a point query.
func (e *Engine) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside one transaction and commits when fn returns nil.
// Any error, or a panic, rolls the whole group back.
//
// The caller's context gates the start of the transaction only. Once begun
// the transaction runs to commit or rollback even if the caller gives up, so
// a cancelled request never leaves a half-applied statement group.
// fn must issue statements through tx; the engine has a single connection
// and using e directly from inside fn would block forever.
func (e *Engine) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	txCtx := context.WithoutCancel(ctx)
	tx, err := e.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

package stmtcache

import (
	"context"
	"database/sql"
)

// TxView executes registered statements inside one transaction.
type TxView struct {
	r  *Registry
	tx *sql.Tx
}

// Tx binds the registry to tx.
func (r *Registry) Tx(tx *sql.Tx) TxView {
	return TxView{r: r, tx: tx}
}

// stmt returns a transaction-bound statement. A statement already prepared
// on the database is rebound with StmtContext. One not yet prepared is
// compiled on the transaction's own connection, because the engine holds a
// single connection and preparing on the pool would wait on this very
// transaction. Both forms are released when the transaction ends.
func (v TxView) stmt(ctx context.Context, name string) (*sql.Stmt, error) {
	e, cached, err := v.r.lookup(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return v.tx.StmtContext(ctx, cached), nil
	}
	return v.tx.PrepareContext(ctx, e.query)
}

// Get runs a single-row query inside the transaction.
func (v TxView) Get(ctx context.Context, name string, args ...any) (*sql.Row, error) {
	stmt, err := v.stmt(ctx, name)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

// Query runs a multi-row query inside the transaction.
func (v TxView) Query(ctx context.Context, name string, args ...any) (*sql.Rows, error) {
	stmt, err := v.stmt(ctx, name)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// Run executes a mutating statement inside the transaction.
func (v TxView) Run(ctx context.Context, name string, args ...any) (sql.Result, error) {
	stmt, err := v.stmt(ctx, name)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

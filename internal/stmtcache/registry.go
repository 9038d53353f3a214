// Package stmtcache keeps named, lazily prepared SQL statements for the life
// of the process.
//
// Callers register a logical operation name (for example
// "film_items.getById") once, then execute it by name. The statement is
// compiled on first use and reused afterwards. Inside a transaction the
// cached statement is rebound to the transaction with Tx.
package stmtcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"filmtrack/internal/logging"
)

// ErrUnknownStatement is returned when a name was never registered.
var ErrUnknownStatement = errors.New("unknown statement")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("statement registry closed")

// Preparer is the subset of *sql.DB the registry needs.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type entry struct {
	query string
	stmt  *sql.Stmt
	calls int64
}

// Registry maps operation names to prepared statements.
type Registry struct {
	db     Preparer
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// New returns an empty registry bound to db.
func New(db Preparer, logger *slog.Logger) *Registry {
	return &Registry{
		db:      db,
		logger:  logging.NewComponentLogger(logger, "stmtcache"),
		entries: make(map[string]*entry),
	}
}

// Register records query under name. Re-registering the same text is a
// no-op; registering different text under an existing name is an error.
func (r *Registry) Register(name, query string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if existing, ok := r.entries[name]; ok {
		if existing.query == query {
			return nil
		}
		return fmt.Errorf("statement %q already registered with different sql", name)
	}
	r.entries[name] = &entry{query: query}
	return nil
}

// lookup returns the entry for name, counting the invocation. When prepare
// is true the statement is compiled on first use. Compilation happens
// outside the mutex: it needs the engine's connection, which an open
// transaction may hold while waiting on this registry.
func (r *Registry) lookup(ctx context.Context, name string, prepare bool) (*entry, *sql.Stmt, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, nil, ErrClosed
	}
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownStatement, name)
	}
	e.calls++
	stmt := e.stmt
	r.mu.Unlock()

	if stmt != nil || !prepare {
		return e, stmt, nil
	}

	prepared, err := r.db.PrepareContext(ctx, e.query)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		_ = prepared.Close()
		return nil, nil, ErrClosed
	case e.stmt != nil:
		// Another caller won the race.
		_ = prepared.Close()
	default:
		e.stmt = prepared
	}
	return e, e.stmt, nil
}

// Get runs a single-row query.
func (r *Registry) Get(ctx context.Context, name string, args ...any) (*sql.Row, error) {
	_, stmt, err := r.lookup(ctx, name, true)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

// Query runs a multi-row query.
func (r *Registry) Query(ctx context.Context, name string, args ...any) (*sql.Rows, error) {
	_, stmt, err := r.lookup(ctx, name, true)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// Run executes a mutating statement.
func (r *Registry) Run(ctx context.Context, name string, args ...any) (sql.Result, error) {
	_, stmt, err := r.lookup(ctx, name, true)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// Stats reports registry usage for operational output.
type Stats struct {
	Registered  int              `json:"registered"`
	Prepared    int              `json:"prepared"`
	Invocations map[string]int64 `json:"invocations"`
}

// Stats returns a snapshot of registry usage.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{Registered: len(r.entries), Invocations: make(map[string]int64, len(r.entries))}
	for name, e := range r.entries {
		if e.stmt != nil {
			stats.Prepared++
		}
		stats.Invocations[name] = e.calls
	}
	return stats
}

// LogStats writes the usage snapshot at debug level, most used first.
func (r *Registry) LogStats() {
	stats := r.Stats()
	names := make([]string, 0, len(stats.Invocations))
	for name := range stats.Invocations {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if stats.Invocations[a] != stats.Invocations[b] {
			if stats.Invocations[a] > stats.Invocations[b] {
				return -1
			}
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stmtcache_stats"),
		logging.Int("registered", stats.Registered),
		logging.Int("prepared", stats.Prepared),
	}
	for _, name := range names {
		attrs = append(attrs, logging.Int64(name, stats.Invocations[name]))
	}
	r.logger.Debug("statement usage", logging.Args(attrs...)...)
}

// Close releases every prepared statement. Close errors are logged, not
// returned, so shutdown continues.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for name, e := range r.entries {
		if e.stmt == nil {
			continue
		}
		if err := e.stmt.Close(); err != nil {
			r.logger.Debug("close statement failed", logging.String("statement", name), logging.Error(err))
		}
		e.stmt = nil
	}
}

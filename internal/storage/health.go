package storage

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	walAgeWarning  = 10 * time.Minute
	walSizeWarning = 50 << 20
)

// Health status values.
const (
	StatusHealthy = "healthy"
	StatusWarning = "warning"
)

// FileState describes one on-disk file next to the data file.
type FileState struct {
	Path     string     `json:"path"`
	Exists   bool       `json:"exists"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified,omitempty"`
}

// TableHealth reports column presence and row count for an expected table.
type TableHealth struct {
	Name           string   `json:"name"`
	Exists         bool     `json:"exists"`
	Rows           int64    `json:"rows"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// Health is the operational report for the data file and its side files.
type Health struct {
	Status      string            `json:"status"`
	Warnings    []string          `json:"warnings,omitempty"`
	CheckedAt   time.Time         `json:"checked_at"`
	Database    FileState         `json:"database"`
	WAL         FileState         `json:"wal"`
	SHM         FileState         `json:"shm"`
	Journal     FileState         `json:"journal"`
	JournalMode string            `json:"journal_mode"`
	Checkpoint  *CheckpointResult `json:"checkpoint,omitempty"`
	IntegrityOK bool              `json:"integrity_ok"`
	Integrity   string            `json:"integrity"`
	Tables      []TableHealth     `json:"tables,omitempty"`
}

// Health inspects the data file and side files, forces a truncate checkpoint
// and runs an integrity check. expected maps table names to the columns the
// caller relies on.
//
// Side files are inspected before the checkpoint so the report reflects the
// state a sync client would have seen.
func (e *Engine) Health(ctx context.Context, expected map[string][]string) (Health, error) {
	now := time.Now()
	health := Health{
		Status:    StatusHealthy,
		CheckedAt: now.UTC(),
		Database:  statFile(e.path),
		WAL:       statFile(e.path + "-wal"),
		SHM:       statFile(e.path + "-shm"),
		Journal:   statFile(e.path + "-journal"),
	}
	health.Warnings = sideFileWarnings(health, now)

	if err := e.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&health.JournalMode); err != nil {
		return health, fmt.Errorf("read journal mode: %w", err)
	}
	if !strings.EqualFold(health.JournalMode, "wal") {
		health.Warnings = append(health.Warnings, fmt.Sprintf("journal mode is %s, expected wal", health.JournalMode))
	}

	result, err := e.Checkpoint(ctx, CheckpointTruncate)
	if err != nil {
		return health, err
	}
	health.Checkpoint = &result
	if result.Busy {
		health.Warnings = append(health.Warnings, "checkpoint could not complete because another connection is busy")
	}

	if err := e.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&health.Integrity); err != nil {
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = strings.EqualFold(health.Integrity, "ok")
	if !health.IntegrityOK {
		health.Warnings = append(health.Warnings, "integrity check failed: "+health.Integrity)
	}

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		table, err := e.tableHealth(ctx, name, expected[name])
		if err != nil {
			return health, err
		}
		if !table.Exists {
			health.Warnings = append(health.Warnings, fmt.Sprintf("table %s is missing", name))
		} else if len(table.MissingColumns) > 0 {
			health.Warnings = append(health.Warnings, fmt.Sprintf("table %s is missing columns: %s", name, strings.Join(table.MissingColumns, ", ")))
		}
		health.Tables = append(health.Tables, table)
	}

	if len(health.Warnings) > 0 {
		health.Status = StatusWarning
	}
	return health, nil
}

func sideFileWarnings(h Health, now time.Time) []string {
	var warnings []string
	if h.Journal.Exists {
		warnings = append(warnings, "legacy rollback journal present; database may not be in WAL mode")
	}
	if h.WAL.Exists {
		if h.WAL.Modified != nil {
			if age := now.Sub(*h.WAL.Modified); age > walAgeWarning {
				warnings = append(warnings, fmt.Sprintf("write-ahead log not checkpointed for %d minutes", int(age.Minutes())))
			}
		}
		if h.WAL.Size > walSizeWarning {
			warnings = append(warnings, fmt.Sprintf("write-ahead log is large (%d MiB); run a manual checkpoint", h.WAL.Size>>20))
		}
	}
	return warnings
}

func statFile(path string) FileState {
	state := FileState{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return state
	}
	mod := info.ModTime().UTC()
	state.Exists = true
	state.Size = info.Size()
	state.Modified = &mod
	return state
}

func (e *Engine) tableHealth(ctx context.Context, name string, columns []string) (TableHealth, error) {
	table := TableHealth{Name: name}
	rows, err := e.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", name)
	if err != nil {
		return table, fmt.Errorf("table info %s: %w", name, err)
	}
	present := make(map[string]struct{})
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			rows.Close()
			return table, fmt.Errorf("scan table info %s: %w", name, err)
		}
		present[col] = struct{}{}
	}
	if err := rows.Close(); err != nil {
		return table, err
	}
	if err := rows.Err(); err != nil {
		return table, fmt.Errorf("iterate table info %s: %w", name, err)
	}
	if len(present) == 0 {
		return table, nil
	}
	table.Exists = true
	for _, col := range columns {
		if _, ok := present[col]; !ok {
			table.MissingColumns = append(table.MissingColumns, col)
		}
	}

	// Table names come from the caller's fixed list, never from input.
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&table.Rows); err != nil {
		return table, fmt.Errorf("count %s: %w", name, err)
	}
	return table, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

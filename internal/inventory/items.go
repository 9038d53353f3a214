package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"filmtrack/internal/logging"
)

// Get returns the item with id, or nil when none exists.
func (m *Manager) Get(ctx context.Context, id int64) (*FilmItem, error) {
	row, err := m.stmts.Get(ctx, stmtItemByID, id)
	if err != nil {
		return nil, wrapStorage("get film item", err)
	}
	item, err := m.readItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get film item", err)
	}
	return item, nil
}

// List returns items matching filter, newest first. Soft-deleted items are
// excluded unless IncludeDeleted is set.
func (m *Manager) List(ctx context.Context, filter Filter) ([]*FilmItem, error) {
	const op = "list film items"
	var (
		where []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		statusValues, err := statusArgs(filter.Statuses)
		if err != nil {
			return nil, validationf(op, "%v", err)
		}
		where = append(where, `status IN (`+makePlaceholders(len(statusValues))+`)`)
		args = append(args, statusValues...)
	}
	if filter.FilmID < 0 {
		return nil, validationf(op, "film_id must be positive")
	}
	if filter.FilmID > 0 {
		where = append(where, `film_id = ?`)
		args = append(args, filter.FilmID)
	}
	if !filter.IncludeDeleted {
		where = append(where, `deleted_at IS NULL`)
	}
	if filter.Offset < 0 {
		return nil, validationf(op, "offset must not be negative")
	}
	limit := filter.Limit
	switch {
	case limit < 0:
		return nil, validationf(op, "limit must not be negative")
	case limit == 0:
		limit = m.defaultLimit
	case limit > m.maxLimit:
		limit = m.maxLimit
	}

	query := `SELECT ` + itemColumns + ` FROM film_items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := m.engine.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	defer rows.Close()

	var items []*FilmItem
	for rows.Next() {
		item, err := m.readItem(rows)
		if err != nil {
			return nil, wrapStorage(op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage(op, err)
	}
	return items, nil
}

// Update applies the set fields of patch. An empty patch does nothing; any
// accepted change stamps updated_at. Callers re-fetch to observe the result.
func (m *Manager) Update(ctx context.Context, id int64, patch Patch) error {
	const op = "update film item"
	sets, err := patch.assignments()
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}

	columns := make([]string, 0, len(sets)+1)
	args := make([]any, 0, len(sets)+2)
	for _, set := range sets {
		columns = append(columns, set.column+` = ?`)
		args = append(args, set.value)
	}
	columns = append(columns, `updated_at = ?`)
	args = append(args, formatTime(m.now()), id)

	res, err := m.engine.Exec(ctx, `UPDATE film_items SET `+strings.Join(columns, `, `)+` WHERE id = ?`, args...)
	if err != nil {
		return wrapStorage(op, err)
	}
	if res.RowsAffected == 0 {
		return notFoundf(op, "film item %d not found", id)
	}

	names := make([]string, 0, len(sets))
	for _, set := range sets {
		names = append(names, set.column)
	}
	m.logger.Debug("film item updated",
		logging.Int64(logging.FieldItemID, id),
		logging.String("columns", strings.Join(names, ",")),
	)
	return nil
}

// Stats counts non-deleted items per status. Every status is present.
func (m *Manager) Stats(ctx context.Context) (map[Status]int, error) {
	const op = "film item stats"
	rows, err := m.stmts.Query(ctx, stmtItemCountByStatus)
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		stats[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, wrapStorage(op, err)
		}
		stats[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage(op, fmt.Errorf("iterate stats: %w", err))
	}
	return stats, nil
}

package inventory

import (
	"context"
	"database/sql"

	"filmtrack/internal/logging"
)

// SoftDelete stamps deleted_at on an unlinked item. Deleting an item that is
// already soft-deleted is a no-op.
func (m *Manager) SoftDelete(ctx context.Context, id int64) error {
	return m.delete(ctx, "soft delete film item", id, func(tx txRunner, item *FilmItem) error {
		if item.Deleted() {
			return nil
		}
		now := formatTime(m.now())
		_, err := tx.Run(ctx, stmtItemSoftDelete, now, now, item.ID)
		return err
	})
}

// HardDelete removes an unlinked item.
func (m *Manager) HardDelete(ctx context.Context, id int64) error {
	return m.delete(ctx, "hard delete film item", id, func(tx txRunner, item *FilmItem) error {
		_, err := tx.Run(ctx, stmtItemHardDelete, item.ID)
		return err
	})
}

type txRunner interface {
	Run(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// delete re-reads the item inside the transaction so the roll guard and the
// mutation see the same row.
func (m *Manager) delete(ctx context.Context, op string, id int64, mutate func(tx txRunner, item *FilmItem) error) error {
	err := m.engine.WithTx(ctx, func(sqlTx *sql.Tx) error {
		tx := m.stmts.Tx(sqlTx)
		item, err := m.getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return notFoundf(op, "film item %d not found", id)
		}
		if item.Linked() {
			return conflictf(op, *item.RollID, "film item %d is linked to roll %d and cannot be deleted", id, *item.RollID)
		}
		return mutate(tx, item)
	})
	if err != nil {
		return wrapStorage(op, err)
	}
	m.logger.Info(op,
		logging.String(logging.FieldEventType, "film_item_deleted"),
		logging.Int64(logging.FieldItemID, id),
	)
	return nil
}

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"filmtrack/internal/logging"
)

// LinkToRoll binds an in_stock or loaded item to a roll and moves it to the
// target status. It stamps the status timestamp, records the camera if the
// item was never loaded, and copies purchase and develop fields onto the
// roll. The copy happens once; later item edits do not reach the roll.
//
// Linking an item again to the same roll with its current status succeeds
// without writing anything.
func (m *Manager) LinkToRoll(ctx context.Context, req LinkRequest) (LinkResult, error) {
	const op = "link film item to roll"
	target := req.TargetStatus
	if target == "" {
		target = StatusShot
	}
	target, err := ParseStatus(string(target))
	if err != nil {
		return LinkResult{}, err
	}
	if target == StatusInStock {
		return LinkResult{}, validationf(op, "target status must not be %s", StatusInStock)
	}
	if req.FilmItemID <= 0 || req.RollID <= 0 {
		return LinkResult{}, validationf(op, "film item id and roll id must be positive")
	}
	camera := strings.TrimSpace(req.LoadedCamera)
	result := LinkResult{FilmItemID: req.FilmItemID, RollID: req.RollID}

	var changed bool
	err = m.engine.WithTx(ctx, func(sqlTx *sql.Tx) error {
		tx := m.stmts.Tx(sqlTx)
		item, err := m.getItemTx(ctx, tx, req.FilmItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return notFoundf(op, "film item %d not found", req.FilmItemID)
		}
		if item.Deleted() {
			return conflictf(op, 0, "film item %d is deleted", item.ID)
		}
		sameRoll := item.Linked() && *item.RollID == req.RollID
		if item.Linked() && !sameRoll {
			return conflictf(op, *item.RollID, "film item %d is already linked to roll %d", item.ID, *item.RollID)
		}
		if sameRoll && item.Status == target {
			return nil
		}
		if !item.Status.linkable() {
			var rollID int64
			if item.RollID != nil {
				rollID = *item.RollID
			}
			return conflictf(op, rollID, "film item %d status must be %s or %s to link, got %s",
				item.ID, StatusInStock, StatusLoaded, item.Status)
		}

		rowRoll, err := tx.Get(ctx, stmtRollByID, req.RollID)
		if err != nil {
			return err
		}
		if _, err := scanRoll(rowRoll); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFoundf(op, "roll %d not found", req.RollID)
			}
			return err
		}

		now := formatTime(m.now())
		loadedCamera := nullableString(item.LoadedCamera)
		var loadedAt any
		if item.LoadedAt != nil {
			loadedAt = formatTime(*item.LoadedAt)
		}
		if item.LoadedAt == nil && item.LoadedCamera == "" {
			loadedAt = now
			loadedCamera = nullableString(camera)
		} else if item.LoadedCamera == "" && camera != "" {
			loadedCamera = camera
		}

		stamps := map[string]any{}
		if column := target.timestampColumn(); column != "" && column != "loaded_at" {
			stamps[column] = now
		}
		if _, err := tx.Run(ctx, stmtItemLink,
			req.RollID,
			string(target),
			loadedCamera,
			loadedAt,
			stamps["shot_at"],
			stamps["sent_to_lab_at"],
			stamps["developed_at"],
			stamps["archived_at"],
			now,
			item.ID,
		); err != nil {
			return err
		}

		if !sameRoll {
			if _, err := tx.Run(ctx, stmtRollDenormalize,
				item.ID,
				item.FilmID,
				nullableFloat(item.PurchasePrice),
				nullableFloat(item.DevelopPrice),
				nullableString(item.PurchaseChannel),
				nullableString(item.BatchNumber),
				nullableString(item.DevelopLab),
				nullableString(item.DevelopProcess),
				nullableString(item.DevelopDate),
				nullableString(item.DevelopNote),
				req.RollID,
			); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	if err != nil {
		return LinkResult{}, wrapStorage(op, err)
	}

	if changed {
		m.logger.Info("film item linked to roll",
			logging.String(logging.FieldEventType, "film_item_linked"),
			logging.Int64(logging.FieldItemID, req.FilmItemID),
			logging.Int64(logging.FieldRollID, req.RollID),
			logging.String("status", string(target)),
		)
	}
	return result, nil
}

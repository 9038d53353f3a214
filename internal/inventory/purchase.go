package inventory

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"filmtrack/internal/logging"
)

// ShippingShare splits total evenly over quantity units at full precision.
func ShippingShare(total float64, quantity int) float64 {
	if quantity <= 0 || total == 0 {
		return 0
	}
	return total / float64(quantity)
}

func validateBatch(batch Batch) (int, error) {
	const op = "create from purchase batch"
	if len(batch.Items) == 0 {
		return 0, validationf(op, "items must be a non-empty list")
	}
	if math.IsNaN(batch.TotalShipping) || math.IsInf(batch.TotalShipping, 0) || batch.TotalShipping < 0 {
		return 0, validationf(op, "total shipping must be a non-negative number")
	}
	total := 0
	for i, line := range batch.Items {
		if line.FilmID <= 0 {
			return 0, validationf(op, "item %d: film_id must be positive", i)
		}
		if line.Quantity <= 0 {
			return 0, validationf(op, "item %d: quantity must be positive", i)
		}
		if line.UnitPrice != nil && (math.IsNaN(*line.UnitPrice) || *line.UnitPrice < 0) {
			return 0, validationf(op, "item %d: unit price must be a non-negative number", i)
		}
		total += line.Quantity
	}
	if total == 0 {
		return 0, validationf(op, "total quantity must be > 0")
	}
	return total, nil
}

// CreateFromPurchaseBatch inserts one in_stock item per purchased unit. The
// whole batch commits or none of it does.
func (m *Manager) CreateFromPurchaseBatch(ctx context.Context, batch Batch) ([]Created, error) {
	const op = "create from purchase batch"
	totalQuantity, err := validateBatch(batch)
	if err != nil {
		return nil, err
	}
	share := ShippingShare(batch.TotalShipping, totalQuantity)
	createdAt := formatTime(m.now())

	created := make([]Created, 0, totalQuantity)
	err = m.engine.WithTx(ctx, func(sqlTx *sql.Tx) error {
		tx := m.stmts.Tx(sqlTx)
		seen := make(map[int64]struct{}, len(batch.Items))
		for _, line := range batch.Items {
			if _, ok := seen[line.FilmID]; ok {
				continue
			}
			row, err := tx.Get(ctx, stmtFilmByID, line.FilmID)
			if err != nil {
				return err
			}
			if _, err := scanFilm(row); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFoundf(op, "film %d does not exist", line.FilmID)
				}
				return err
			}
			seen[line.FilmID] = struct{}{}
		}

		for _, line := range batch.Items {
			note := strings.TrimSpace(line.Note)
			if note == "" {
				note = strings.TrimSpace(batch.Note)
			}
			for range line.Quantity {
				res, err := tx.Run(ctx, stmtItemInsert,
					line.FilmID,
					string(StatusInStock),
					nullableString(strings.TrimSpace(line.Label)),
					nullableString(strings.TrimSpace(batch.PurchaseChannel)),
					nullableString(strings.TrimSpace(batch.PurchaseVendor)),
					nullableString(strings.TrimSpace(batch.PurchaseOrderID)),
					nullableFloat(line.UnitPrice),
					nullableString(strings.TrimSpace(batch.PurchaseCurrency)),
					nullableString(strings.TrimSpace(batch.PurchaseDate)),
					nullableString(strings.TrimSpace(line.ExpiryDate)),
					nullableString(strings.TrimSpace(line.BatchNumber)),
					share,
					nullableString(note),
					createdAt,
				)
				if err != nil {
					return err
				}
				id, err := res.LastInsertId()
				if err != nil {
					return err
				}
				created = append(created, Created{ID: id, FilmID: line.FilmID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(op, err)
	}

	m.logger.Info("purchase batch recorded",
		logging.String(logging.FieldEventType, "purchase_batch_created"),
		logging.Int("items", len(created)),
		logging.Int("lines", len(batch.Items)),
		logging.Float64("total_shipping", batch.TotalShipping),
		logging.Float64("shipping_share", share),
	)
	return created, nil
}

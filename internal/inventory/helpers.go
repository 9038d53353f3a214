package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout has a fixed-width fraction so stored timestamps sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const itemColumns = "id, film_id, roll_id, status, label, " +
	"purchase_channel, purchase_vendor, purchase_order_id, purchase_price, purchase_currency, " +
	"purchase_date, expiry_date, batch_number, purchase_shipping_share, purchase_note, " +
	"develop_lab, develop_process, develop_price, develop_shipping, develop_date, develop_channel, develop_note, " +
	"loaded_camera, loaded_at, shot_at, sent_to_lab_at, developed_at, archived_at, loaded_date, finished_date, " +
	"negative_archived, shot_logs, created_at, updated_at, deleted_at"

const filmColumns = "id, name, brand, format, iso, process, created_at"

const rollColumns = "id, title, camera, start_date, notes, film_id, film_item_id, " +
	"purchase_cost, develop_cost, purchase_channel, batch_number, develop_lab, develop_process, develop_date, develop_note, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*FilmItem, error) {
	var (
		item           FilmItem
		rollID         sql.NullInt64
		status         string
		label          sql.NullString
		pChannel       sql.NullString
		pVendor        sql.NullString
		pOrder         sql.NullString
		pPrice         sql.NullFloat64
		pCurrency      sql.NullString
		pDate          sql.NullString
		expiry         sql.NullString
		batchNumber    sql.NullString
		shippingShare  sql.NullFloat64
		pNote          sql.NullString
		dLab           sql.NullString
		dProcess       sql.NullString
		dPrice         sql.NullFloat64
		dShipping      sql.NullFloat64
		dDate          sql.NullString
		dChannel       sql.NullString
		dNote          sql.NullString
		loadedCamera   sql.NullString
		loadedAt       sql.NullString
		shotAt         sql.NullString
		sentToLabAt    sql.NullString
		developedAt    sql.NullString
		archivedAt     sql.NullString
		loadedDate     sql.NullString
		finishedDate   sql.NullString
		negative       sql.NullInt64
		shotLogs       sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
		deletedRaw     sql.NullString
	)
	if err := row.Scan(
		&item.ID, &item.FilmID, &rollID, &status, &label,
		&pChannel, &pVendor, &pOrder, &pPrice, &pCurrency,
		&pDate, &expiry, &batchNumber, &shippingShare, &pNote,
		&dLab, &dProcess, &dPrice, &dShipping, &dDate, &dChannel, &dNote,
		&loadedCamera, &loadedAt, &shotAt, &sentToLabAt, &developedAt, &archivedAt, &loadedDate, &finishedDate,
		&negative, &shotLogs, &createdRaw, &updatedRaw, &deletedRaw,
	); err != nil {
		return nil, err
	}

	item.RollID = nullInt(rollID)
	item.Status = Status(status)
	item.Label = label.String
	item.PurchaseChannel = pChannel.String
	item.PurchaseVendor = pVendor.String
	item.PurchaseOrderID = pOrder.String
	item.PurchasePrice = nullFloat(pPrice)
	item.PurchaseCurrency = pCurrency.String
	item.PurchaseDate = pDate.String
	item.ExpiryDate = expiry.String
	item.BatchNumber = batchNumber.String
	item.PurchaseShippingShare = shippingShare.Float64
	item.PurchaseNote = pNote.String
	item.DevelopLab = dLab.String
	item.DevelopProcess = dProcess.String
	item.DevelopPrice = nullFloat(dPrice)
	item.DevelopShipping = nullFloat(dShipping)
	item.DevelopDate = dDate.String
	item.DevelopChannel = dChannel.String
	item.DevelopNote = dNote.String
	item.LoadedCamera = loadedCamera.String
	item.LoadedAt = nullTime(loadedAt)
	item.ShotAt = nullTime(shotAt)
	item.SentToLabAt = nullTime(sentToLabAt)
	item.DevelopedAt = nullTime(developedAt)
	item.ArchivedAt = nullTime(archivedAt)
	item.LoadedDate = loadedDate.String
	item.FinishedDate = finishedDate.String
	item.NegativeArchived = negative.Valid && negative.Int64 != 0
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	item.UpdatedAt = nullTime(updatedRaw)
	item.DeletedAt = nullTime(deletedRaw)

	logs, err := decodeShotLogs(shotLogs.String)
	if err != nil {
		item.shotLogsErr = fmt.Errorf("decode shot_logs: %w", err)
	}
	item.ShotLogs = logs
	return &item, nil
}

func scanFilm(row scanner) (*Film, error) {
	var (
		film       Film
		brand      sql.NullString
		format     sql.NullString
		iso        sql.NullInt64
		process    sql.NullString
		createdRaw sql.NullString
	)
	if err := row.Scan(&film.ID, &film.Name, &brand, &format, &iso, &process, &createdRaw); err != nil {
		return nil, err
	}
	film.Brand = brand.String
	film.Format = format.String
	film.ISO = int(iso.Int64)
	film.Process = process.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		film.CreatedAt = created
	}
	return &film, nil
}

func scanRoll(row scanner) (*Roll, error) {
	var (
		roll            Roll
		title           sql.NullString
		camera          sql.NullString
		startDate       sql.NullString
		notes           sql.NullString
		filmID          sql.NullInt64
		filmItemID      sql.NullInt64
		purchaseCost    sql.NullFloat64
		developCost     sql.NullFloat64
		purchaseChannel sql.NullString
		batchNumber     sql.NullString
		developLab      sql.NullString
		developProcess  sql.NullString
		developDate     sql.NullString
		developNote     sql.NullString
		createdRaw      sql.NullString
	)
	if err := row.Scan(
		&roll.ID, &title, &camera, &startDate, &notes, &filmID, &filmItemID,
		&purchaseCost, &developCost, &purchaseChannel, &batchNumber,
		&developLab, &developProcess, &developDate, &developNote, &createdRaw,
	); err != nil {
		return nil, err
	}
	roll.Title = title.String
	roll.Camera = camera.String
	roll.StartDate = startDate.String
	roll.Notes = notes.String
	roll.FilmID = nullInt(filmID)
	roll.FilmItemID = nullInt(filmItemID)
	roll.PurchaseCost = nullFloat(purchaseCost)
	roll.DevelopCost = nullFloat(developCost)
	roll.PurchaseChannel = purchaseChannel.String
	roll.BatchNumber = batchNumber.String
	roll.DevelopLab = developLab.String
	roll.DevelopProcess = developProcess.String
	roll.DevelopDate = developDate.String
	roll.DevelopNote = developNote.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		roll.CreatedAt = created
	}
	return &roll, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullInt(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	t, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

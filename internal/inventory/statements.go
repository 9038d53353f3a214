package inventory

// Statement names registered with the statement cache.
const (
	stmtItemByID          = "film_items.getById"
	stmtItemInsert        = "film_items.insertFromPurchase"
	stmtItemLink          = "film_items.linkToRoll"
	stmtItemSoftDelete    = "film_items.softDelete"
	stmtItemHardDelete    = "film_items.hardDelete"
	stmtItemCountByStatus = "film_items.countByStatus"
	stmtFilmByID          = "films.getById"
	stmtFilmInsert        = "films.insert"
	stmtFilmList          = "films.list"
	stmtRollByID          = "rolls.getById"
	stmtRollInsert        = "rolls.insert"
	stmtRollDenormalize   = "rolls.copyFromItem"
)

var statements = map[string]string{
	stmtItemByID: `SELECT ` + itemColumns + ` FROM film_items WHERE id = ?`,
	stmtItemInsert: `INSERT INTO film_items (
            film_id, status, label,
            purchase_channel, purchase_vendor, purchase_order_id,
            purchase_price, purchase_currency, purchase_date,
            expiry_date, batch_number, purchase_shipping_share,
            purchase_note, created_at
        ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	stmtItemLink: `UPDATE film_items
        SET roll_id = ?, status = ?, loaded_camera = ?, loaded_at = ?,
            shot_at = COALESCE(?, shot_at),
            sent_to_lab_at = COALESCE(?, sent_to_lab_at),
            developed_at = COALESCE(?, developed_at),
            archived_at = COALESCE(?, archived_at),
            updated_at = ?
        WHERE id = ?`,
	stmtItemSoftDelete:    `UPDATE film_items SET deleted_at = ?, updated_at = ? WHERE id = ? AND roll_id IS NULL`,
	stmtItemHardDelete:    `DELETE FROM film_items WHERE id = ? AND roll_id IS NULL`,
	stmtItemCountByStatus: `SELECT status, COUNT(1) FROM film_items WHERE deleted_at IS NULL GROUP BY status`,
	stmtFilmByID:          `SELECT ` + filmColumns + ` FROM films WHERE id = ?`,
	stmtFilmInsert:        `INSERT INTO films (name, brand, format, iso, process, created_at) VALUES (?,?,?,?,?,?)`,
	stmtFilmList:          `SELECT ` + filmColumns + ` FROM films ORDER BY name COLLATE NOCASE, id`,
	stmtRollByID:          `SELECT ` + rollColumns + ` FROM rolls WHERE id = ?`,
	stmtRollInsert:        `INSERT INTO rolls (title, camera, start_date, notes, created_at) VALUES (?,?,?,?,?)`,
	stmtRollDenormalize: `UPDATE rolls
        SET film_item_id = ?, film_id = ?, purchase_cost = ?, develop_cost = ?,
            purchase_channel = ?, batch_number = ?, develop_lab = ?,
            develop_process = ?, develop_date = ?, develop_note = ?
        WHERE id = ?`,
}

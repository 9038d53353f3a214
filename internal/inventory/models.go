package inventory

import "time"

// FilmItem is one physical roll or canister of film.
type FilmItem struct {
	ID     int64  `json:"id"`
	FilmID int64  `json:"film_id"`
	RollID *int64 `json:"roll_id"`
	Status Status `json:"status"`
	Label  string `json:"label,omitempty"`

	PurchaseChannel       string   `json:"purchase_channel,omitempty"`
	PurchaseVendor        string   `json:"purchase_vendor,omitempty"`
	PurchaseOrderID       string   `json:"purchase_order_id,omitempty"`
	PurchasePrice         *float64 `json:"purchase_price"`
	PurchaseCurrency      string   `json:"purchase_currency,omitempty"`
	PurchaseDate          string   `json:"purchase_date,omitempty"`
	ExpiryDate            string   `json:"expiry_date,omitempty"`
	BatchNumber           string   `json:"batch_number,omitempty"`
	PurchaseShippingShare float64  `json:"purchase_shipping_share"`
	PurchaseNote          string   `json:"purchase_note,omitempty"`

	DevelopLab      string   `json:"develop_lab,omitempty"`
	DevelopProcess  string   `json:"develop_process,omitempty"`
	DevelopPrice    *float64 `json:"develop_price"`
	DevelopShipping *float64 `json:"develop_shipping"`
	DevelopDate     string   `json:"develop_date,omitempty"`
	DevelopChannel  string   `json:"develop_channel,omitempty"`
	DevelopNote     string   `json:"develop_note,omitempty"`

	LoadedCamera     string     `json:"loaded_camera,omitempty"`
	LoadedAt         *time.Time `json:"loaded_at"`
	ShotAt           *time.Time `json:"shot_at"`
	SentToLabAt      *time.Time `json:"sent_to_lab_at"`
	DevelopedAt      *time.Time `json:"developed_at"`
	ArchivedAt       *time.Time `json:"archived_at"`
	LoadedDate       string     `json:"loaded_date,omitempty"`
	FinishedDate     string     `json:"finished_date,omitempty"`
	NegativeArchived bool       `json:"negative_archived"`
	ShotLogs         ShotLogs   `json:"shot_logs"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`

	// shotLogsErr is set when the stored shot_logs could not be decoded;
	// ShotLogs is then nil.
	shotLogsErr error
}

// Linked reports whether the item is bound to a roll.
func (i *FilmItem) Linked() bool {
	return i != nil && i.RollID != nil
}

// Deleted reports whether the item is soft-deleted.
func (i *FilmItem) Deleted() bool {
	return i != nil && i.DeletedAt != nil
}

// Batch is one purchase order expanded into film items.
type Batch struct {
	PurchaseDate     string      `json:"purchase_date,omitempty"`
	PurchaseChannel  string      `json:"purchase_channel,omitempty"`
	PurchaseVendor   string      `json:"purchase_vendor,omitempty"`
	PurchaseOrderID  string      `json:"purchase_order_id,omitempty"`
	PurchaseCurrency string      `json:"purchase_currency,omitempty"`
	TotalShipping    float64     `json:"total_shipping"`
	Note             string      `json:"note,omitempty"`
	Items            []BatchLine `json:"items"`
}

// BatchLine is quantity units of one catalog film.
type BatchLine struct {
	FilmID      int64    `json:"film_id"`
	Quantity    int      `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Label       string   `json:"label,omitempty"`
	ExpiryDate  string   `json:"expiry_date,omitempty"`
	BatchNumber string   `json:"batch_number,omitempty"`
	Note        string   `json:"note_purchase,omitempty"`
}

// Created identifies one item produced by a batch.
type Created struct {
	ID     int64 `json:"id"`
	FilmID int64 `json:"film_id"`
}

// Filter selects items for List. Zero values mean no constraint; Limit 0
// uses the configured default.
type Filter struct {
	Statuses       []Status `json:"status,omitempty"`
	FilmID         int64    `json:"film_id,omitempty"`
	IncludeDeleted bool     `json:"include_deleted,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}

// LinkRequest binds an item to a roll.
type LinkRequest struct {
	FilmItemID   int64  `json:"film_item_id"`
	RollID       int64  `json:"roll_id"`
	LoadedCamera string `json:"loaded_camera,omitempty"`
	// TargetStatus defaults to StatusShot.
	TargetStatus Status `json:"target_status,omitempty"`
}

// LinkResult echoes the identifiers of a successful link.
type LinkResult struct {
	FilmItemID int64 `json:"film_item_id"`
	RollID     int64 `json:"roll_id"`
}

// Film is a minimal catalog entry items refer to.
type Film struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	Format    string    `json:"format,omitempty"`
	ISO       int       `json:"iso,omitempty"`
	Process   string    `json:"process,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFilm describes a catalog entry to create.
type NewFilm struct {
	Name    string `json:"name"`
	Brand   string `json:"brand,omitempty"`
	Format  string `json:"format,omitempty"`
	ISO     int    `json:"iso,omitempty"`
	Process string `json:"process,omitempty"`
}

// Roll is the exposure record a film item becomes once shot. The purchase
// and develop columns are copied from the item once, when it is linked.
type Roll struct {
	ID         int64  `json:"id"`
	Title      string `json:"title,omitempty"`
	Camera     string `json:"camera,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	Notes      string `json:"notes,omitempty"`
	FilmID     *int64 `json:"film_id"`
	FilmItemID *int64 `json:"film_item_id"`

	PurchaseCost    *float64 `json:"purchase_cost"`
	DevelopCost     *float64 `json:"develop_cost"`
	PurchaseChannel string   `json:"purchase_channel,omitempty"`
	BatchNumber     string   `json:"batch_number,omitempty"`
	DevelopLab      string   `json:"develop_lab,omitempty"`
	DevelopProcess  string   `json:"develop_process,omitempty"`
	DevelopDate     string   `json:"develop_date,omitempty"`
	DevelopNote     string   `json:"develop_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRoll describes a roll to create.
type NewRoll struct {
	Title     string `json:"title,omitempty"`
	Camera    string `json:"camera,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

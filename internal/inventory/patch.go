package inventory

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Field is an optional patch value. Set reports whether the key was present;
// Null reports an explicit clear.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Value returns a set field.
func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Null = true
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Patch lists every column Update may change. roll_id is deliberately
// absent: LinkToRoll is the only way to bind an item to a roll.
type Patch struct {
	Status Field[Status] `json:"status"`
	Label  Field[string] `json:"label"`

	PurchaseChannel       Field[string]  `json:"purchase_channel"`
	PurchaseVendor        Field[string]  `json:"purchase_vendor"`
	PurchaseOrderID       Field[string]  `json:"purchase_order_id"`
	PurchasePrice         Field[float64] `json:"purchase_price"`
	PurchaseCurrency      Field[string]  `json:"purchase_currency"`
	PurchaseDate          Field[string]  `json:"purchase_date"`
	ExpiryDate            Field[string]  `json:"expiry_date"`
	BatchNumber           Field[string]  `json:"batch_number"`
	PurchaseShippingShare Field[float64] `json:"purchase_shipping_share"`
	PurchaseNote          Field[string]  `json:"purchase_note"`

	DevelopLab      Field[string]  `json:"develop_lab"`
	DevelopProcess  Field[string]  `json:"develop_process"`
	DevelopPrice    Field[float64] `json:"develop_price"`
	DevelopShipping Field[float64] `json:"develop_shipping"`
	DevelopDate     Field[string]  `json:"develop_date"`
	DevelopChannel  Field[string]  `json:"develop_channel"`
	DevelopNote     Field[string]  `json:"develop_note"`

	LoadedCamera     Field[string]    `json:"loaded_camera"`
	LoadedAt         Field[time.Time] `json:"loaded_at"`
	ShotAt           Field[time.Time] `json:"shot_at"`
	SentToLabAt      Field[time.Time] `json:"sent_to_lab_at"`
	DevelopedAt      Field[time.Time] `json:"developed_at"`
	ArchivedAt       Field[time.Time] `json:"archived_at"`
	LoadedDate       Field[string]    `json:"loaded_date"`
	FinishedDate     Field[string]    `json:"finished_date"`
	NegativeArchived Field[bool]      `json:"negative_archived"`
	ShotLogs         Field[ShotLogs]  `json:"shot_logs"`
}

// ParsePatch decodes a JSON object into a Patch. Keys outside the whitelist
// are ignored.
func ParsePatch(data []byte) (Patch, error) {
	var patch Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return Patch{}, &Error{Kind: KindValidation, Op: "parse patch", Message: "malformed patch", Err: err}
	}
	return patch, nil
}

type assignment struct {
	column string
	value  any
}

// assignments validates the patch and returns the columns to write in a
// stable order.
func (p Patch) assignments() ([]assignment, error) {
	var out []assignment
	text := func(column string, f Field[string]) {
		if f.Set {
			out = append(out, assignment{column, nullableString(strings.TrimSpace(f.Value))})
		}
	}
	number := func(column string, f Field[float64]) {
		if !f.Set {
			return
		}
		if f.Null {
			out = append(out, assignment{column, nil})
			return
		}
		out = append(out, assignment{column, f.Value})
	}
	stamp := func(column string, f Field[time.Time]) {
		if !f.Set {
			return
		}
		if f.Null || f.Value.IsZero() {
			out = append(out, assignment{column, nil})
			return
		}
		out = append(out, assignment{column, formatTime(f.Value)})
	}

	if p.Status.Set {
		if p.Status.Null {
			return nil, validationf("update", "status cannot be cleared")
		}
		status, err := ParseStatus(string(p.Status.Value))
		if err != nil {
			return nil, validationf("update", "invalid film item status %q", p.Status.Value)
		}
		out = append(out, assignment{"status", string(status)})
	}
	text("label", p.Label)

	text("purchase_channel", p.PurchaseChannel)
	text("purchase_vendor", p.PurchaseVendor)
	text("purchase_order_id", p.PurchaseOrderID)
	number("purchase_price", p.PurchasePrice)
	text("purchase_currency", p.PurchaseCurrency)
	text("purchase_date", p.PurchaseDate)
	text("expiry_date", p.ExpiryDate)
	text("batch_number", p.BatchNumber)
	number("purchase_shipping_share", p.PurchaseShippingShare)
	text("purchase_note", p.PurchaseNote)

	text("develop_lab", p.DevelopLab)
	text("develop_process", p.DevelopProcess)
	number("develop_price", p.DevelopPrice)
	number("develop_shipping", p.DevelopShipping)
	text("develop_date", p.DevelopDate)
	text("develop_channel", p.DevelopChannel)
	text("develop_note", p.DevelopNote)

	text("loaded_camera", p.LoadedCamera)
	stamp("loaded_at", p.LoadedAt)
	stamp("shot_at", p.ShotAt)
	stamp("sent_to_lab_at", p.SentToLabAt)
	stamp("developed_at", p.DevelopedAt)
	stamp("archived_at", p.ArchivedAt)
	text("loaded_date", p.LoadedDate)
	text("finished_date", p.FinishedDate)

	if p.NegativeArchived.Set {
		out = append(out, assignment{"negative_archived", boolToInt(p.NegativeArchived.Value)})
	}
	if p.ShotLogs.Set {
		var logs ShotLogs
		if !p.ShotLogs.Null {
			logs = p.ShotLogs.Value.normalized()
			if err := logs.Validate(); err != nil {
				return nil, &Error{Kind: KindValidation, Op: "update", Message: err.Error()}
			}
			if logs == nil {
				logs = ShotLogs{}
			}
		}
		encoded, err := encodeShotLogs(logs)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Op: "update", Message: "encode shot logs", Err: err}
		}
		out = append(out, assignment{"shot_logs", encoded})
	}
	return out, nil
}

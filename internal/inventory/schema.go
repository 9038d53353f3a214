package inventory

import (
	_ "embed"

	"filmtrack/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when schema.sql
// changes.
const schemaVersion = 1

// Schema returns the versioned DDL for storage.Engine.EnsureSchema.
func Schema() storage.Schema {
	return storage.Schema{Version: schemaVersion, SQL: schemaSQL}
}

// HealthExpectations lists the tables and columns the health report checks.
func HealthExpectations() map[string][]string {
	return map[string][]string{
		"films": {"id", "name", "created_at"},
		"rolls": {"id", "film_id", "film_item_id", "purchase_cost", "develop_cost"},
		"film_items": {
			"id", "film_id", "roll_id", "status",
			"purchase_shipping_share", "shot_logs", "negative_archived",
			"loaded_at", "shot_at", "created_at", "updated_at", "deleted_at",
		},
	}
}

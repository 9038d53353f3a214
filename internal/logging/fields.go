package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering (e.g. "lock_acquired").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID is the standardized structured logging key for process session identifiers.
	FieldSessionID = "session_id"
	// FieldItemID identifies a film item.
	FieldItemID = "item_id"
	// FieldRollID identifies a roll.
	FieldRollID = "roll_id"
	// FieldPath is a file system path.
	FieldPath = "path"
)

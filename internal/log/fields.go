package log

// Canonical field name constants for structured logging.
const (
	FieldSessionID = "session_id"
	FieldComponent = "component"
	FieldAssetID   = "asset_id"
	FieldTypeID    = "type_id"
	FieldStatus    = "status"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldOutcome   = "outcome"
	FieldErrorKind = "error_kind"
	FieldPath      = "path"
	FieldDestPath  = "dest_path"
	FieldBytes     = "bytes"
)

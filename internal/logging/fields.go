package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. "decode_failed").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID identifies a single CLI invocation.
	FieldSessionID = "session_id"
	// FieldPath is the file a log line is about.
	FieldPath = "path"
	// FieldFolder is the scanned root folder.
	FieldFolder = "folder"
)

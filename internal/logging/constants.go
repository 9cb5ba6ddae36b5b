package logging

// Standardized field names for structured logging. These constants keep the
// extraction pipeline's log output consistent and filterable.
const (
	FieldFile      = "file_path"
	FieldPipeline  = "pipeline"
	FieldUnit      = "unit"
	FieldModel     = "model"
	FieldAttempt   = "attempt"
	FieldDelay     = "delay_ms"
	FieldCount     = "count"
	FieldCoverage  = "coverage"
	FieldIndex     = "index"
	FieldDuration  = "duration_ms"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldReason    = "reason"
	FieldCategory  = "category"
)

package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldDate       = "date"
	FieldKind       = "kind"
	FieldEntryIndex = "entry_index"
	FieldField      = "field"
	FieldBytes      = "bytes"
	FieldBackend    = "backend"
	FieldKey        = "key"
	FieldPath       = "path"
	FieldSink       = "sink"
	FieldRef        = "ref"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentExport  = "export"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpClear    = "clear"
	OpLoad     = "load"
	OpSave     = "save"
	OpExport   = "export"
	OpDeliver  = "deliver"
	OpMigrate  = "migrate"
	OpValidate = "validate"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntry adds the fields addressing one ledger entry
func (f LogFields) WithEntry(date, kind string, index int) LogFields {
	f[FieldDate] = date
	f[FieldKind] = kind
	f[FieldEntryIndex] = index
	return f
}

// WithSink adds export sink fields
func (f LogFields) WithSink(name, ref string, durationMs int64, success bool) LogFields {
	f[FieldSink] = name
	if ref != "" {
		f[FieldRef] = ref
	}
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

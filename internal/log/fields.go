package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldRunID        = "run_id"
	FieldSource       = "source"
	FieldSink         = "sink"
	FieldTransactions = "transactions"
	FieldFacts        = "facts"
	FieldDates        = "dates"
	FieldCategories   = "categories"
	FieldMerchants    = "merchants"
	FieldTotalSpend   = "total_spend"
	FieldCategory     = "category"
	FieldAmount       = "amount"
	FieldDuration     = "duration_ms"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldStatusCode   = "status_code"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentSchema   = "schema"
	ComponentMeasures = "measures"
	ComponentReport   = "report"
	ComponentSource   = "source"
	ComponentStorage  = "storage"
	ComponentSheets   = "sheets"
	ComponentSink     = "sink"
	ComponentAMQP     = "amqp"
	ComponentKafka    = "kafka"
	ComponentBackend  = "backend"
	ComponentCache    = "cache"
	ComponentHTTP     = "http"
)

// Operations defines standard operation names
const (
	OpBuild    = "build"
	OpMeasure  = "measure"
	OpGenerate = "generate"
	OpRead     = "read"
	OpImport   = "import"
	OpPublish  = "publish"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
	OpServe    = "serve"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeSource        = "source_error"
	ErrorTypeSink          = "sink_error"
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

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error and error type fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithRunID adds the report run identifier
func (f LogFields) WithRunID(runID string) LogFields {
	f[FieldRunID] = runID
	return f
}

// WithModel adds star-schema row counts
func (f LogFields) WithModel(facts, dates, categories, merchants int) LogFields {
	f[FieldFacts] = facts
	f[FieldDates] = dates
	f[FieldCategories] = categories
	f[FieldMerchants] = merchants
	return f
}

// WithAmount adds a decimal amount rendered as a string
func (f LogFields) WithAmount(key string, amount decimal.Decimal) LogFields {
	f[key] = amount.String()
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

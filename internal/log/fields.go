package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldCommand   = "command"
	FieldVerb      = "verb"
	FieldKind      = "kind"
	FieldAmount    = "amount"
	FieldAccount   = "account"
	FieldSavings   = "savings"
	FieldSource    = "source"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
	FieldSheetsRef = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBudget  = "budget"
	ComponentStorage = "storage"
	ComponentAdvice  = "advice"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentAdmin   = "admin"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAppend   = "append"
	OpUndo     = "undo"
	OpReset    = "reset"
	OpAdvise   = "advise"
	OpPublish  = "publish"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error field when err is not nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the ledger record fields.
func (f LogFields) WithTransaction(kind string, amount float64) LogFields {
	f[FieldKind] = kind
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithBalances(account, savings float64) LogFields {
	f[FieldAccount] = account
	f[FieldSavings] = savings
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

package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRunID          = "run_id"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldDuration       = "duration_ms"
	FieldEntityID       = "entity_id"
	FieldEntityKind     = "entity_kind"
	FieldYear           = "year"
	FieldScenario       = "scenario"
	FieldTemplateID     = "template_id"
	FieldRuleID         = "rule_id"
	FieldEntryID        = "entry_id"
	FieldLabel          = "label"
	FieldFrequency      = "frequency"
	FieldNextOccurrence = "next_occurrence"
	FieldDate           = "date"
	FieldCategory       = "category"
	FieldAmountCents    = "amount_cents"
	FieldLineCount      = "line_count"
	FieldCount          = "count"
	FieldBackend        = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentBudget    = "budget"
	ComponentTemplate  = "template"
	ComponentRecurring = "recurring"
	ComponentLedger    = "ledger"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpReplace  = "replace"
	OpApply    = "apply"
	OpSeed     = "seed"
	OpGenerate = "generate"
	OpPublish  = "publish"
	OpExport   = "export"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error text; a nil error is ignored.
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

// WithEntity adds the fields identifying a budget entity.
func (f LogFields) WithEntity(id, kind string, year int) LogFields {
	f[FieldEntityID] = id
	if kind != "" {
		f[FieldEntityKind] = kind
	}
	if year != 0 {
		f[FieldYear] = year
	}
	return f
}

// WithRule adds recurring rule fields.
func (f LogFields) WithRule(id, category string, amountCents int64) LogFields {
	f[FieldRuleID] = id
	f[FieldCategory] = category
	f[FieldAmountCents] = amountCents
	return f
}

func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
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

package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldPeriod     = "period"
	FieldExpenseID  = "expense_id"
	FieldCategoryID = "category_id"
	FieldAmount     = "amount"
	FieldBackend    = "backend"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentBudget  = "budget"
	ComponentStorage = "storage"
	ComponentDaemon  = "daemon"
	ComponentNotify  = "notify"
	ComponentExport  = "export"
	ComponentTUI     = "tui"
)

// Fields is a small builder for structured log attributes.
type Fields map[string]any

// NewFields creates an empty field set.
func NewFields() Fields {
	return make(Fields)
}

// WithError adds the error message, if any.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation names the operation being logged.
func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithPeriod adds year/month and the "2006-01" period key.
func (f Fields) WithPeriod(year, month int, key string) Fields {
	f[FieldYear] = year
	f[FieldMonth] = month
	f[FieldPeriod] = key
	return f
}

// WithExpense adds expense identity fields.
func (f Fields) WithExpense(id, categoryID string, amount float64) Fields {
	f[FieldExpenseID] = id
	f[FieldCategoryID] = categoryID
	f[FieldAmount] = amount
	return f
}

// Args flattens the fields into slog key/value arguments.
func (f Fields) Args() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}

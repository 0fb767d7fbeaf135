package lint

// Violation is implemented by the entity-carrying rule errors so callers can
// render any failure uniformly via errors.As without caring which entity
// kind was at fault.
type Violation interface {
	error

	// Diagnostic returns the structured description of the violation.
	Diagnostic() *Diagnostic
}

// TableViolation is returned by a table rule that found a violation. It
// carries the offending table so callers can inspect it programmatically.
type TableViolation struct {
	Table Table
	Info  *Diagnostic
}

func (e *TableViolation) Error() string {
	return "table rule violated: " + e.Info.String()
}

// Diagnostic returns the violation's diagnostic.
func (e *TableViolation) Diagnostic() *Diagnostic { return e.Info }

// ColumnViolation is returned by a column rule that found a violation.
type ColumnViolation struct {
	Column Column
	Info   *Diagnostic
}

func (e *ColumnViolation) Error() string {
	return "column rule violated: " + e.Info.String()
}

// Diagnostic returns the violation's diagnostic.
func (e *ColumnViolation) Diagnostic() *Diagnostic { return e.Info }

// ForeignKeyViolation is returned by a foreign key rule that found a
// violation.
type ForeignKeyViolation struct {
	ForeignKey ForeignKey
	Info       *Diagnostic
}

func (e *ForeignKeyViolation) Error() string {
	return "foreign key rule violated: " + e.Info.String()
}

// Diagnostic returns the violation's diagnostic.
func (e *ForeignKeyViolation) Diagnostic() *Diagnostic { return e.Info }

// UnapplicableRule reports a rule that was asked to validate an entity it
// cannot apply to. It carries no diagnostic: the rule did not run.
type UnapplicableRule struct {
	Rule    string
	Message string
}

func (e *UnapplicableRule) Error() string {
	return "unapplicable rule: " + e.Message
}

var (
	_ Violation = (*TableViolation)(nil)
	_ Violation = (*ColumnViolation)(nil)
	_ Violation = (*ForeignKeyViolation)(nil)
)

package rules

import (
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// tableViolation builds the violation a table rule returns. The diagnostic
// object is the table name.
func tableViolation(rule string, table lint.Table, message, resolution string) error {
	info, err := lint.NewDiagnostic().
		Rule(rule).
		Object(table.Name()).
		Message(message).
		Resolution(resolution).
		Build()
	if err != nil {
		return err
	}
	return &lint.TableViolation{Table: table, Info: info}
}

// columnViolation builds the violation a column rule returns. The diagnostic
// object is the qualified "table.column" name.
func columnViolation(rule string, column lint.Column, message, resolution string) error {
	info, err := lint.NewDiagnostic().
		Rule(rule).
		Object(column.Table().Name() + "." + column.Name()).
		Message(message).
		Resolution(resolution).
		Build()
	if err != nil {
		return err
	}
	return &lint.ColumnViolation{Column: column, Info: info}
}

// foreignKeyViolation builds the violation a foreign key rule returns. The
// diagnostic object is the constraint name, or "Unnamed foreign key" when
// the constraint is unnamed.
func foreignKeyViolation(rule string, fk lint.ForeignKey, message, resolution string) error {
	object := fk.Name()
	if object == "" {
		object = "Unnamed foreign key"
	}
	info, err := lint.NewDiagnostic().
		Rule(rule).
		Object(object).
		Message(message).
		Resolution(resolution).
		Build()
	if err != nil {
		return err
	}
	return &lint.ForeignKeyViolation{ForeignKey: fk, Info: info}
}

package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoSurrogatePrimaryKeyInExtension{})
}

// NoSurrogatePrimaryKeyInExtension flags primary key columns of extension
// tables that generate or default their value. An extension row must reuse
// the key of the row it extends; a surrogate key breaks that link. Not part
// of the default bundle.
type NoSurrogatePrimaryKeyInExtension struct{}

// Name implements lint.Rule.
func (NoSurrogatePrimaryKeyInExtension) Name() string {
	return "NoSurrogatePrimaryKeyInExtension"
}

// Description implements lint.Rule.
func (NoSurrogatePrimaryKeyInExtension) Description() string {
	return "Extension tables must not use surrogate primary keys"
}

// ValidateColumn implements lint.ColumnRule.
func (r NoSurrogatePrimaryKeyInExtension) ValidateColumn(_ lint.Database, column lint.Column) error {
	if !column.IsPrimaryKey() {
		return nil
	}
	table := column.Table()
	if !table.IsExtension() {
		return nil
	}

	var reason string
	switch {
	case column.IsGenerated() && column.HasDefault():
		reason = "is generated and defines a DEFAULT value"
	case column.IsGenerated():
		reason = "is generated (e.g. SERIAL/AUTOINCREMENT)"
	case column.HasDefault():
		reason = "defines a DEFAULT value"
	default:
		return nil
	}

	qualified := table.Name() + "." + column.Name()
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Primary-key column '%s' belongs to an extension table and %s", qualified, reason),
		fmt.Sprintf("Use a non-surrogate primary key for '%s' by removing SERIAL/AUTOINCREMENT/DEFAULT and reusing the inherited key value", qualified),
	)
}

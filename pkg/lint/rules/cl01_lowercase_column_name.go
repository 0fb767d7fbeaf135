package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(LowercaseColumnName{})
}

// LowercaseColumnName flags column names containing uppercase letters.
type LowercaseColumnName struct{}

// Name implements lint.Rule.
func (LowercaseColumnName) Name() string { return "LowercaseColumnName" }

// Description implements lint.Rule.
func (LowercaseColumnName) Description() string { return "Column names must be lowercase" }

// ValidateColumn implements lint.ColumnRule.
func (r LowercaseColumnName) ValidateColumn(_ lint.Database, column lint.Column) error {
	if isLowercase(column.Name()) {
		return nil
	}
	tableName := column.Table().Name()
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Column '%s' in table '%s' is not lowercase", column.Name(), tableName),
		fmt.Sprintf("Rename column '%s' in table '%s' to be all lowercase", column.Name(), tableName),
	)
}

package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(SnakeCaseColumnName{})
}

// SnakeCaseColumnName flags column names that differ from their snake_case
// form.
type SnakeCaseColumnName struct{}

// Name implements lint.Rule.
func (SnakeCaseColumnName) Name() string { return "SnakeCaseColumnName" }

// Description implements lint.Rule.
func (SnakeCaseColumnName) Description() string { return "Column names must follow snake_case" }

// ValidateColumn implements lint.ColumnRule.
func (r SnakeCaseColumnName) ValidateColumn(_ lint.Database, column lint.Column) error {
	name := column.Name()
	expected := expectedSnakeCase(name)
	if expected == name {
		return nil
	}
	tableName := column.Table().Name()
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Column '%s' in table '%s' violates snake_case naming convention: %s",
			name, tableName, snakeCaseIssue(name)),
		fmt.Sprintf("Change '%s' to '%s' in table '%s' (use lowercase letters and single underscores only)",
			name, expected, tableName),
	)
}

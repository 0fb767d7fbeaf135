package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(SnakeCaseTableName{})
}

// SnakeCaseTableName flags table names that differ from their snake_case
// form.
type SnakeCaseTableName struct{}

// Name implements lint.Rule.
func (SnakeCaseTableName) Name() string { return "SnakeCaseTableName" }

// Description implements lint.Rule.
func (SnakeCaseTableName) Description() string { return "Table names must follow snake_case" }

// ValidateTable implements lint.TableRule.
func (r SnakeCaseTableName) ValidateTable(_ lint.Database, table lint.Table) error {
	name := table.Name()
	expected := expectedSnakeCase(name)
	if expected == name {
		return nil
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table '%s' violates snake_case naming convention: %s", name, snakeCaseIssue(name)),
		fmt.Sprintf("Change '%s' to '%s' (use lowercase letters and single underscores only)", name, expected),
	)
}

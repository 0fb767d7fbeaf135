package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(LowercaseTableName{})
}

// LowercaseTableName flags table names containing uppercase letters.
type LowercaseTableName struct{}

// Name implements lint.Rule.
func (LowercaseTableName) Name() string { return "LowercaseTableName" }

// Description implements lint.Rule.
func (LowercaseTableName) Description() string { return "Table names must be lowercase" }

// ValidateTable implements lint.TableRule.
func (r LowercaseTableName) ValidateTable(_ lint.Database, table lint.Table) error {
	if isLowercase(table.Name()) {
		return nil
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table name '%s' is not lowercase", table.Name()),
		"Rename the table to be all lowercase",
	)
}

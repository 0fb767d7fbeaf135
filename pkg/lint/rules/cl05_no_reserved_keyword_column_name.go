package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoReservedKeywordColumnName{})
}

// NoReservedKeywordColumnName flags column names that are reserved keywords.
// The zero value checks against the default SQL reserved-word list.
type NoReservedKeywordColumnName struct {
	// Keywords overrides the reserved-word list when non-empty.
	Keywords []string
}

// Name implements lint.Rule.
func (NoReservedKeywordColumnName) Name() string { return "NoReservedKeywordColumnName" }

// Description implements lint.Rule.
func (NoReservedKeywordColumnName) Description() string {
	return "Column names must not be reserved keywords"
}

// ValidateColumn implements lint.ColumnRule.
func (r NoReservedKeywordColumnName) ValidateColumn(_ lint.Database, column lint.Column) error {
	name := column.Name()
	if !isReservedKeyword(name, r.Keywords) {
		return nil
	}
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Column name '%s' in table '%s' is a reserved keyword.", name, column.Table().Name()),
		fmt.Sprintf("Rename the column '%s' to something that is not a reserved keyword.", name),
	)
}

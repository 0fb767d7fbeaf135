package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoReservedKeywordTableName{})
}

// NoReservedKeywordTableName flags table names that are reserved keywords.
// The zero value checks against the default SQL reserved-word list.
type NoReservedKeywordTableName struct {
	// Keywords overrides the reserved-word list when non-empty.
	Keywords []string
}

// Name implements lint.Rule.
func (NoReservedKeywordTableName) Name() string { return "NoReservedKeywordTableName" }

// Description implements lint.Rule.
func (NoReservedKeywordTableName) Description() string {
	return "Table names must not be reserved keywords"
}

// ValidateTable implements lint.TableRule.
func (r NoReservedKeywordTableName) ValidateTable(_ lint.Database, table lint.Table) error {
	name := table.Name()
	if !isReservedKeyword(name, r.Keywords) {
		return nil
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table name '%s' is a reserved keyword.", name),
		fmt.Sprintf("Rename the table '%s' to something that is not a reserved keyword.", name),
	)
}

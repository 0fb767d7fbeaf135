package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NonCompositePrimaryKeyNamedId{})
}

// NonCompositePrimaryKeyNamedId flags single-column primary keys that are
// not named "id". Composite keys are exempt.
type NonCompositePrimaryKeyNamedId struct{}

// Name implements lint.Rule.
func (NonCompositePrimaryKeyNamedId) Name() string { return "NonCompositePrimaryKeyNamedId" }

// Description implements lint.Rule.
func (NonCompositePrimaryKeyNamedId) Description() string {
	return "Single-column primary keys must be named id"
}

// ValidateColumn implements lint.ColumnRule.
func (r NonCompositePrimaryKeyNamedId) ValidateColumn(_ lint.Database, column lint.Column) error {
	if !column.IsPrimaryKey() {
		return nil
	}
	table := column.Table()
	if len(table.PrimaryKeyColumns()) != 1 || column.Name() == "id" {
		return nil
	}
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Column '%s' in table '%s' is a non-composite primary key but is not named 'id'",
			column.Name(), table.Name()),
		fmt.Sprintf("Rename the primary key column '%s' to 'id' in table '%s'",
			column.Name(), table.Name()),
	)
}

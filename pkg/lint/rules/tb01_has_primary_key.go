package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(HasPrimaryKey{})
}

// HasPrimaryKey flags tables that declare no primary key.
type HasPrimaryKey struct{}

// Name implements lint.Rule.
func (HasPrimaryKey) Name() string { return "HasPrimaryKey" }

// Description implements lint.Rule.
func (HasPrimaryKey) Description() string { return "Tables must declare a primary key" }

// ValidateTable implements lint.TableRule.
func (r HasPrimaryKey) ValidateTable(_ lint.Database, table lint.Table) error {
	if len(table.PrimaryKeyColumns()) > 0 {
		return nil
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table '%s' does not have a primary key", table.Name()),
		fmt.Sprintf("Add a primary key column to table '%s'", table.Name()),
	)
}

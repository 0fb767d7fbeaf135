package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoTautologicalCheckRule{})
}

// NoTautologicalCheckRule flags check constraints that always hold, such as
// CHECK (1 = 1). They add cost on every write without constraining anything.
type NoTautologicalCheckRule struct{}

// Name implements lint.Rule.
func (NoTautologicalCheckRule) Name() string { return "NoTautologicalCheckRule" }

// Description implements lint.Rule.
func (NoTautologicalCheckRule) Description() string {
	return "Check constraints must not be tautological"
}

// ValidateTable implements lint.TableRule.
func (r NoTautologicalCheckRule) ValidateTable(_ lint.Database, table lint.Table) error {
	for _, check := range table.CheckConstraints() {
		if !check.IsTautology() {
			continue
		}
		expr := check.Expression()
		return tableViolation(r.Name(), table,
			fmt.Sprintf("Table '%s' has a tautological check constraint: CHECK (%s)", table.Name(), expr),
			fmt.Sprintf("Remove the tautological check constraint 'CHECK (%s)' from table '%s'", expr, table.Name()),
		)
	}
	return nil
}

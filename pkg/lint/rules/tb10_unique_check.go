package rules

import (
	"fmt"
	"sort"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(UniqueCheckRule{})
}

// UniqueCheckRule flags tables declaring the same check constraint twice.
// Expressions are compared in canonical form after sorting, so detection is
// independent of declaration order. Its diagnostics carry the historical
// rule identifier "UniqueCheckConstraint".
type UniqueCheckRule struct{}

// Name implements lint.Rule.
func (UniqueCheckRule) Name() string { return "UniqueCheckRule" }

// Description implements lint.Rule.
func (UniqueCheckRule) Description() string {
	return "Check constraints must be unique within a table"
}

// ValidateTable implements lint.TableRule.
func (r UniqueCheckRule) ValidateTable(_ lint.Database, table lint.Table) error {
	checks := table.CheckConstraints()
	expressions := make([]string, len(checks))
	for i, check := range checks {
		expressions[i] = check.Expression()
	}
	sort.Strings(expressions)
	for i := 1; i < len(expressions); i++ {
		if expressions[i-1] != expressions[i] {
			continue
		}
		return tableViolation("UniqueCheckConstraint", table,
			fmt.Sprintf("Table '%s' has non-unique check constraints", table.Name()),
			"Ensure all check constraints in the table are unique",
		)
	}
	return nil
}

package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoNegationCheckRule{})
}

// NoNegationCheckRule flags check constraints that can never hold, such as
// CHECK (1 = 0). A table with one cannot accept any row.
type NoNegationCheckRule struct{}

// Name implements lint.Rule.
func (NoNegationCheckRule) Name() string { return "NoNegationCheckRule" }

// Description implements lint.Rule.
func (NoNegationCheckRule) Description() string {
	return "Check constraints must not be always false"
}

// ValidateTable implements lint.TableRule.
func (r NoNegationCheckRule) ValidateTable(_ lint.Database, table lint.Table) error {
	for _, check := range table.CheckConstraints() {
		if !check.IsNegation() {
			continue
		}
		return tableViolation(r.Name(), table,
			fmt.Sprintf("Table '%s' has a negation check constraint: CHECK (%s)", table.Name(), check.Expression()),
			"Remove the negation check constraint.",
		)
	}
	return nil
}

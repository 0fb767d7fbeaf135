package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(PoliciesRequireRowLevelSecurity{})
}

// PoliciesRequireRowLevelSecurity flags tables that declare policies without
// enabling row level security. Policies on such tables never apply, which
// usually means the table is wide open. Not part of the default bundle.
type PoliciesRequireRowLevelSecurity struct{}

// Name implements lint.Rule.
func (PoliciesRequireRowLevelSecurity) Name() string {
	return "PoliciesRequireRowLevelSecurity"
}

// Description implements lint.Rule.
func (PoliciesRequireRowLevelSecurity) Description() string {
	return "Tables with policies must enable row level security"
}

// ValidateTable implements lint.TableRule.
func (r PoliciesRequireRowLevelSecurity) ValidateTable(_ lint.Database, table lint.Table) error {
	if len(table.Policies()) == 0 || table.HasRowLevelSecurity() {
		return nil
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table '%s' has policies but RLS is not enabled", table.Name()),
		"Enable Row Level Security on the table",
	)
}

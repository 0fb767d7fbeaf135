package rules

import (
	"fmt"

	"github.com/jinzhu/inflection"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(PluralTableName{})
}

// PluralTableName flags table names whose last underscore segment is
// singular. Tables hold many rows, so "user_accounts" passes while
// "user_account" does not.
type PluralTableName struct{}

// Name implements lint.Rule.
func (PluralTableName) Name() string { return "PluralTableName" }

// Description implements lint.Rule.
func (PluralTableName) Description() string { return "Table names must be plural" }

// ValidateTable implements lint.TableRule.
func (r PluralTableName) ValidateTable(_ lint.Database, table lint.Table) error {
	name := table.Name()
	prefix, segment := splitLastSegment(name)
	plural := inflection.Plural(segment)
	if plural == segment {
		return nil
	}
	expected := joinSegment(prefix, plural)
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table '%s' violates plural naming convention: the last segment '%s' is singular, not plural", name, segment),
		fmt.Sprintf("Change '%s' to '%s' (pluralize the last segment from '%s' to '%s')", name, expected, segment, plural),
	)
}

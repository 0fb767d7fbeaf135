package rules

import (
	"fmt"

	"github.com/jinzhu/inflection"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(SingularColumnName{})
}

// SingularColumnName flags column names whose last underscore segment is
// plural. A column holds one value per row, so "user_account" passes while
// "user_accounts" does not.
type SingularColumnName struct{}

// Name implements lint.Rule.
func (SingularColumnName) Name() string { return "SingularColumnName" }

// Description implements lint.Rule.
func (SingularColumnName) Description() string { return "Column names must be singular" }

// ValidateColumn implements lint.ColumnRule.
func (r SingularColumnName) ValidateColumn(_ lint.Database, column lint.Column) error {
	name := column.Name()
	prefix, segment := splitLastSegment(name)
	singular := inflection.Singular(segment)
	if singular == segment {
		return nil
	}
	expected := joinSegment(prefix, singular)
	tableName := column.Table().Name()
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Column '%s' in table '%s' violates singular naming convention: the last segment '%s' is plural, not singular",
			name, tableName, segment),
		fmt.Sprintf("Change '%s' to '%s' in table '%s' (singularize the last segment from '%s' to '%s')",
			name, expected, tableName, segment, singular),
	)
}

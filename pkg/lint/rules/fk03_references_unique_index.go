package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(ReferencesUniqueIndex{})
}

// ReferencesUniqueIndex checks that the referenced columns of a foreign key
// are covered by a unique index on the referenced table, primary keys
// included. Without one the reference target is not guaranteed to identify
// a single row.
type ReferencesUniqueIndex struct{}

// Name implements lint.Rule.
func (ReferencesUniqueIndex) Name() string {
	return "ReferencesUniqueIndex"
}

// Description implements lint.Rule.
func (ReferencesUniqueIndex) Description() string {
	return "Foreign keys must reference columns covered by a unique index"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r ReferencesUniqueIndex) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	referenced := fk.ReferencedColumns()
	for _, index := range fk.ReferencedTable().UniqueIndices() {
		if sameColumns(index.Columns(), referenced) {
			return nil
		}
	}

	cols := strings.Join(columnNames(referenced), ", ")
	host := fk.HostTable().Name()
	target := fk.ReferencedTable().Name()
	return foreignKeyViolation(r.Name(), fk,
		fmt.Sprintf("Foreign key from table '%s' references columns (%s) in table '%s' which are not covered by a unique index", host, cols, target),
		fmt.Sprintf("Add a unique constraint or primary key on columns (%s) in table '%s', or remove the foreign key from table '%s'", cols, target, host),
	)
}

// sameColumns reports whether two column lists hold the same columns in the
// same order.
func sameColumns(a, b []lint.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

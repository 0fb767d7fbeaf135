package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(PrimaryKeyReferenceEndsWithId{})
}

// PrimaryKeyReferenceEndsWithId checks that a host column referencing a
// primary key column is named 'id' or ends with '_id', so the reference is
// recognizable from the column name alone.
type PrimaryKeyReferenceEndsWithId struct{}

// Name implements lint.Rule.
func (PrimaryKeyReferenceEndsWithId) Name() string {
	return "PrimaryKeyReferenceEndsWithId"
}

// Description implements lint.Rule.
func (PrimaryKeyReferenceEndsWithId) Description() string {
	return "Columns referencing primary keys must be named 'id' or end with '_id'"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r PrimaryKeyReferenceEndsWithId) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	hostColumns := fk.HostColumns()
	referencedColumns := fk.ReferencedColumns()
	for i, host := range hostColumns {
		if i >= len(referencedColumns) {
			break
		}
		referenced := referencedColumns[i]
		if !referenced.IsPrimaryKey() {
			continue
		}
		name := host.Name()
		if name == "id" || strings.HasSuffix(name, "_id") {
			continue
		}
		return foreignKeyViolation(r.Name(), fk,
			fmt.Sprintf("Foreign key column '%s.%s' references primary key column '%s.%s' but is not named 'id' or does not end with '_id'",
				host.Table().Name(), name, referenced.Table().Name(), referenced.Name()),
			fmt.Sprintf("Rename the column '%s' in table '%s' to end with '_id'", name, host.Table().Name()),
		)
	}
	return nil
}

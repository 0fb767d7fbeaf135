package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(ExtensionForeignKeyOnDeleteCascade{})
}

// ExtensionForeignKeyOnDeleteCascade checks that extension foreign keys,
// those mapping the full primary key of the host table onto the full primary
// key of the referenced table, declare ON DELETE CASCADE. Deleting the
// extended row must remove its extension rows with it.
type ExtensionForeignKeyOnDeleteCascade struct{}

// Name implements lint.Rule.
func (ExtensionForeignKeyOnDeleteCascade) Name() string {
	return "ExtensionForeignKeyOnDeleteCascade"
}

// Description implements lint.Rule.
func (ExtensionForeignKeyOnDeleteCascade) Description() string {
	return "Extension foreign keys must declare ON DELETE CASCADE"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r ExtensionForeignKeyOnDeleteCascade) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	if !isExtensionKey(fk) {
		return nil
	}
	action := fk.OnDelete()
	if action == "CASCADE" {
		return nil
	}
	host := fk.HostTable().Name()
	target := fk.ReferencedTable().Name()
	return foreignKeyViolation(r.Name(), fk,
		fmt.Sprintf("Extension foreign key on table '%s' referencing '%s' declares ON DELETE %s instead of ON DELETE CASCADE", host, target, action),
		fmt.Sprintf("Declare ON DELETE CASCADE on the extension foreign key so rows in '%s' are removed together with their extended row in '%s'", host, target),
	)
}

// isExtensionKey reports whether fk maps the full primary key of its host
// table onto the full primary key of the referenced table.
func isExtensionKey(fk lint.ForeignKey) bool {
	hostKey := fk.HostTable().PrimaryKeyColumns()
	referencedKey := fk.ReferencedTable().PrimaryKeyColumns()
	if len(hostKey) == 0 || len(referencedKey) == 0 {
		return false
	}
	return columnSetEqual(fk.HostColumns(), hostKey) && columnSetEqual(fk.ReferencedColumns(), referencedKey)
}

// columnSetEqual reports whether two column lists hold the same columns,
// ignoring order.
func columnSetEqual(a, b []lint.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for _, column := range a {
		found := false
		for _, other := range b {
			if column == other {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

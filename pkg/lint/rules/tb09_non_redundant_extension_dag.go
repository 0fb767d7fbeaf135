package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NonRedundantExtensionDag{})
}

// NonRedundantExtensionDag flags tables that directly extend a table which
// is already reachable transitively through another extended table. The
// direct edge carries no information and bloats the hierarchy.
type NonRedundantExtensionDag struct{}

// Name implements lint.Rule.
func (NonRedundantExtensionDag) Name() string { return "NonRedundantExtensionDag" }

// Description implements lint.Rule.
func (NonRedundantExtensionDag) Description() string {
	return "Extension hierarchies must not contain redundant edges"
}

// ValidateTable implements lint.TableRule.
func (r NonRedundantExtensionDag) ValidateTable(_ lint.Database, table lint.Table) error {
	direct := table.ExtendedTables()
	if len(direct) < 2 {
		return nil
	}
	for _, extended := range direct {
		for _, via := range direct {
			if via == extended {
				continue
			}
			if !extendsTransitively(via, extended) {
				continue
			}
			return tableViolation(r.Name(), table,
				fmt.Sprintf("Table '%s' has a redundant extension: '%s' is already reachable through '%s'",
					table.Name(), extended.Name(), via.Name()),
				fmt.Sprintf("Remove the foreign key extending '%s' from table '%s'",
					extended.Name(), table.Name()),
			)
		}
	}
	return nil
}

// extendsTransitively reports whether target is reachable from the table
// through extension edges.
func extendsTransitively(from, target lint.Table) bool {
	for _, ancestor := range transitiveExtendedTables(from) {
		if ancestor == target {
			return true
		}
	}
	return false
}

// transitiveExtendedTables returns every table reachable from the given
// table through extension edges, excluding the table itself. The walk
// tolerates cycles.
func transitiveExtendedTables(table lint.Table) []lint.Table {
	var ancestors []lint.Table
	visited := map[lint.Table]struct{}{table: {}}
	var walk func(lint.Table)
	walk = func(t lint.Table) {
		for _, parent := range t.ExtendedTables() {
			if _, done := visited[parent]; done {
				continue
			}
			visited[parent] = struct{}{}
			ancestors = append(ancestors, parent)
			walk(parent)
		}
	}
	walk(table)
	return ancestors
}

package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(UniqueColumnNamesInExtensionGraph{})
}

// UniqueColumnNamesInExtensionGraph flags tables that redeclare a column
// already defined by a table they transitively extend. Primary key columns
// are exempt on both sides: extension tables share their key columns with
// the tables they extend by construction.
type UniqueColumnNamesInExtensionGraph struct{}

// Name implements lint.Rule.
func (UniqueColumnNamesInExtensionGraph) Name() string {
	return "UniqueColumnNamesInExtensionGraph"
}

// Description implements lint.Rule.
func (UniqueColumnNamesInExtensionGraph) Description() string {
	return "Column names must be unique across the extension graph"
}

// ValidateTable implements lint.TableRule.
func (r UniqueColumnNamesInExtensionGraph) ValidateTable(_ lint.Database, table lint.Table) error {
	if !table.IsExtension() {
		return nil
	}
	ancestors := transitiveExtendedTables(table)
	for _, column := range table.Columns() {
		if column.IsPrimaryKey() {
			continue
		}
		for _, ancestor := range ancestors {
			if !definesColumn(ancestor, column.Name()) {
				continue
			}
			return tableViolation(r.Name(), table,
				fmt.Sprintf("Table '%s' redefines column '%s' which is already defined in extended table '%s'",
					table.Name(), column.Name(), ancestor.Name()),
				fmt.Sprintf("Rename or remove the column '%s' in table '%s' (it is inherited from '%s' through the extension hierarchy)",
					column.Name(), table.Name(), ancestor.Name()),
			)
		}
	}
	return nil
}

// definesColumn reports whether the table declares a non-primary-key column
// with the given name, compared case-insensitively.
func definesColumn(table lint.Table, name string) bool {
	for _, column := range table.Columns() {
		if column.IsPrimaryKey() {
			continue
		}
		if strings.EqualFold(column.Name(), name) {
			return true
		}
	}
	return false
}

package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(CompatibleForeignKey{})
}

// CompatibleForeignKey checks that every host column of a foreign key is
// compatible with the referenced column it maps to. Incompatibility is
// reported with the most specific cause: both columns generative, a data
// type mismatch, or disjoint table hierarchies.
type CompatibleForeignKey struct{}

// Name implements lint.Rule.
func (CompatibleForeignKey) Name() string {
	return "CompatibleForeignKey"
}

// Description implements lint.Rule.
func (CompatibleForeignKey) Description() string {
	return "Foreign key columns must be compatible with the columns they reference"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r CompatibleForeignKey) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	hostColumns := fk.HostColumns()
	referencedColumns := fk.ReferencedColumns()
	for i, host := range hostColumns {
		if i >= len(referencedColumns) {
			break
		}
		referenced := referencedColumns[i]
		if host.IsCompatibleWith(referenced) {
			continue
		}

		hostName := fmt.Sprintf("%s.%s", host.Table().Name(), host.Name())
		referencedName := fmt.Sprintf("%s.%s", referenced.Table().Name(), referenced.Name())

		if host.IsGenerated() && referenced.IsGenerated() {
			return foreignKeyViolation(r.Name(), fk,
				fmt.Sprintf("Foreign key column `%s` and referenced column `%s` are both generative (auto-increment/serial), which means they should never have the same value", hostName, referencedName),
				fmt.Sprintf("Remove the generative property from `%s` (change from SERIAL/AUTO_INCREMENT to INT/BIGINT) or redesign the foreign key relationship", hostName),
			)
		}

		if host.NormalizedDataType() != referenced.NormalizedDataType() {
			return foreignKeyViolation(r.Name(), fk,
				fmt.Sprintf("Foreign key column `%s` has data type '%s' which is incompatible with referenced column `%s` data type '%s'", hostName, host.NormalizedDataType(), referencedName, referenced.NormalizedDataType()),
				fmt.Sprintf("Change the data type of `%s` to '%s' to match the referenced column", hostName, referenced.NormalizedDataType()),
			)
		}

		return foreignKeyViolation(r.Name(), fk,
			fmt.Sprintf("Foreign key column `%s` is not compatible with referenced column `%s`: they reference incompatible table hierarchies. `%s` references [%s], while `%s` references [%s]",
				hostName, referencedName, hostName, describeReachableTables(host), referencedName, describeReachableTables(referenced)),
			fmt.Sprintf("Ensure that `%s` and `%s` are part of the same table extension hierarchy, or reconsider the foreign key relationship", hostName, referencedName),
		)
	}
	return nil
}

// describeReachableTables renders the table hierarchy a column can reach
// through its own foreign keys, for use in diagnostics.
func describeReachableTables(column lint.Column) string {
	tables := column.Table().ReferencedTablesViaColumn(column)
	if len(tables) == 0 {
		if column.IsPrimaryKey() {
			return fmt.Sprintf("%s (primary key)", column.Table().Name())
		}
		return "none"
	}
	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name()
	}
	return strings.Join(names, ", ")
}

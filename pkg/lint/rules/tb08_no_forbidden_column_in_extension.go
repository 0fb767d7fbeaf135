package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoForbiddenColumnInExtension{})
}

// NoForbiddenColumnInExtension flags extension tables that define a column
// with the forbidden name. Such columns are typically maintained by the
// hierarchy machinery and must not be declared by hand. The comparison is
// case-insensitive.
type NoForbiddenColumnInExtension struct {
	// ForbiddenName is the column name to reject. Empty means "extension".
	ForbiddenName string
}

// Name implements lint.Rule.
func (NoForbiddenColumnInExtension) Name() string { return "NoForbiddenColumnInExtension" }

// Description implements lint.Rule.
func (NoForbiddenColumnInExtension) Description() string {
	return "Extension tables must not define the forbidden column"
}

func (r NoForbiddenColumnInExtension) forbidden() string {
	if r.ForbiddenName == "" {
		return "extension"
	}
	return r.ForbiddenName
}

// ValidateTable implements lint.TableRule.
func (r NoForbiddenColumnInExtension) ValidateTable(_ lint.Database, table lint.Table) error {
	if !table.IsExtension() {
		return nil
	}
	forbidden := r.forbidden()
	for _, column := range table.Columns() {
		if !strings.EqualFold(column.Name(), forbidden) {
			continue
		}
		extended := table.ExtendedTables()
		names := make([]string, len(extended))
		for i, t := range extended {
			names[i] = t.Name()
		}
		word := "table"
		if len(names) != 1 {
			word = "tables"
		}
		return tableViolation(r.Name(), table,
			fmt.Sprintf("Table '%s' extends %s (%s) but has a forbidden column named '%s'",
				table.Name(), word, strings.Join(names, ", "), forbidden),
			fmt.Sprintf("Rename or remove the '%s' column from table '%s' (extension tables should not define this column)",
				forbidden, table.Name()),
		)
	}
	return nil
}

package rules

import (
	"fmt"
	"sort"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(UniqueUniqueIndex{})
}

// UniqueUniqueIndex flags tables declaring two unique indices over the same
// column list. The second index costs writes without adding any guarantee.
type UniqueUniqueIndex struct{}

// Name implements lint.Rule.
func (UniqueUniqueIndex) Name() string { return "UniqueUniqueIndex" }

// Description implements lint.Rule.
func (UniqueUniqueIndex) Description() string {
	return "Unique indices must be unique within a table"
}

// ValidateTable implements lint.TableRule.
func (r UniqueUniqueIndex) ValidateTable(_ lint.Database, table lint.Table) error {
	indices := table.UniqueIndices()
	expressions := make([]string, len(indices))
	for i, index := range indices {
		expressions[i] = index.Expression()
	}
	sort.Strings(expressions)
	for i := 1; i < len(expressions); i++ {
		if expressions[i-1] != expressions[i] {
			continue
		}
		return tableViolation(r.Name(), table,
			fmt.Sprintf("Table '%s' has non-unique unique index on columns: %s", table.Name(), expressions[i]),
			"Ensure all unique index in the table are unique",
		)
	}
	return nil
}

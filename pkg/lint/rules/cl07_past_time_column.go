package rules

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(PastTimeColumnRule{})
}

// futureBoundColumns are "_at" columns that legitimately hold future
// timestamps and are exempt from the past-bound requirement.
var futureBoundColumns = map[string]struct{}{
	"expires_at":   {},
	"due_at":       {},
	"starts_at":    {},
	"ends_at":      {},
	"scheduled_at": {},
}

// PastTimeColumnRule flags "_at" timestamp columns without a check
// constraint bounding them to the past, i.e. one comparing against now() or
// current_timestamp with a less-than operator. Not part of the default
// bundle.
type PastTimeColumnRule struct{}

// Name implements lint.Rule.
func (PastTimeColumnRule) Name() string { return "PastTimeColumnRule" }

// Description implements lint.Rule.
func (PastTimeColumnRule) Description() string {
	return "Time columns must be constrained to the past"
}

// ValidateColumn implements lint.ColumnRule.
func (r PastTimeColumnRule) ValidateColumn(_ lint.Database, column lint.Column) error {
	name := column.Name()
	if !strings.HasSuffix(name, "_at") {
		return nil
	}
	if _, exempt := futureBoundColumns[name]; exempt {
		return nil
	}

	for _, check := range column.CheckConstraints() {
		expr := strings.ToLower(check.Expression())
		mentionsNow := strings.Contains(expr, "now()") || strings.Contains(expr, "current_timestamp")
		if mentionsNow && strings.Contains(expr, "<") {
			return nil
		}
	}

	tableName := column.Table().Name()
	return columnViolation(r.Name(), column,
		fmt.Sprintf("Time-related column '%s.%s' must have a check constraint ensuring it is in the past.",
			tableName, name),
		fmt.Sprintf("Add a check constraint like `CHECK (%s <= NOW())`.", name),
	)
}

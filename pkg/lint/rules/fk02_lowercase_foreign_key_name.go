package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(LowercaseForeignKeyName{})
}

// LowercaseForeignKeyName checks that named foreign keys use only lowercase
// letters. Unnamed foreign keys are skipped.
type LowercaseForeignKeyName struct{}

// Name implements lint.Rule.
func (LowercaseForeignKeyName) Name() string {
	return "LowercaseForeignKeyName"
}

// Description implements lint.Rule.
func (LowercaseForeignKeyName) Description() string {
	return "Foreign key names must be lowercase"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r LowercaseForeignKeyName) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	name := fk.Name()
	if name == "" {
		return nil
	}
	if isLowercase(name) {
		return nil
	}
	return foreignKeyViolation(r.Name(), fk,
		fmt.Sprintf("Foreign key name '%s' is not lowercase", name),
		"Rename the foreign key to be all lowercase",
	)
}

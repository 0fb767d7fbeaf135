package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(NoReservedKeywordForeignKeyName{})
}

// NoReservedKeywordForeignKeyName checks that named foreign keys do not use
// a reserved keyword as their name. An empty Keywords list falls back to the
// built-in PostgreSQL reserved words.
type NoReservedKeywordForeignKeyName struct {
	Keywords []string
}

// Name implements lint.Rule.
func (NoReservedKeywordForeignKeyName) Name() string {
	return "NoReservedKeywordForeignKeyName"
}

// Description implements lint.Rule.
func (NoReservedKeywordForeignKeyName) Description() string {
	return "Foreign key names must not be reserved keywords"
}

// ValidateForeignKey implements lint.ForeignKeyRule.
func (r NoReservedKeywordForeignKeyName) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	name := fk.Name()
	if name == "" {
		return nil
	}
	if !isReservedKeyword(name, r.Keywords) {
		return nil
	}
	return foreignKeyViolation(r.Name(), fk,
		fmt.Sprintf("Foreign key name '%s' is a reserved keyword.", name),
		fmt.Sprintf("Rename the foreign key '%s' to something that is not a reserved keyword.", name),
	)
}

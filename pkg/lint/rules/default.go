package rules

import "github.com/earth-metabolome-initiative/sql-rules/pkg/lint"

// Default returns the default rule bundle in evaluation order. Table rules
// run first, then column rules, then foreign key rules. Rules registered in
// this package but absent here (PoliciesRequireRowLevelSecurity,
// PastTimeColumnRule, NoSurrogatePrimaryKeyInExtension) are opt-in.
func Default() []lint.Rule {
	return []lint.Rule{
		HasPrimaryKey{},
		LowercaseTableName{},
		SnakeCaseTableName{},
		PluralTableName{},
		NoReservedKeywordTableName{},
		NoTautologicalCheckRule{},
		NoNegationCheckRule{},
		NoForbiddenColumnInExtension{ForbiddenName: "most_concrete_table"},
		NonRedundantExtensionDag{},
		UniqueCheckRule{},
		UniqueColumnNamesInExtensionGraph{},
		UniqueForeignKey{},
		UniqueUniqueIndex{},

		LowercaseColumnName{},
		NonCompositePrimaryKeyNamedId{},
		SnakeCaseColumnName{},
		SingularColumnName{},
		NoReservedKeywordColumnName{},
		TextualColumnRule{},

		CompatibleForeignKey{},
		LowercaseForeignKeyName{},
		ReferencesUniqueIndex{},
		PrimaryKeyReferenceEndsWithId{},
		ExtensionForeignKeyOnDeleteCascade{},
		NoReservedKeywordForeignKeyName{},
	}
}

// NewDefaultLinter returns a Linter loaded with the default rule bundle.
func NewDefaultLinter() *lint.Linter {
	linter, err := lint.NewLinter(Default()...)
	if err != nil {
		panic(err)
	}
	return linter
}

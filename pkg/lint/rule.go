package lint

// Rule is the metadata interface every rule implements. Name is the stable
// identifier configuration and diagnostics refer to; rules of every kind
// share one namespace.
type Rule interface {
	// Name returns the rule's identifier, e.g. "SnakeCaseTableName".
	Name() string

	// Description returns a one-line human-readable description.
	Description() string
}

// TableRule validates one table at a time.
type TableRule interface {
	Rule

	// ValidateTable returns nil when the table passes, a *TableViolation
	// when it does not.
	ValidateTable(db Database, table Table) error
}

// ColumnRule validates one column at a time.
type ColumnRule interface {
	Rule

	// ValidateColumn returns nil when the column passes, a
	// *ColumnViolation when it does not.
	ValidateColumn(db Database, column Column) error
}

// ForeignKeyRule validates one foreign key at a time.
type ForeignKeyRule interface {
	Rule

	// ValidateForeignKey returns nil when the key passes, a
	// *ForeignKeyViolation when it does not.
	ValidateForeignKey(db Database, fk ForeignKey) error
}

// Kind classifies which entity a rule validates.
type Kind string

// Rule kinds.
const (
	KindTable      Kind = "table"
	KindColumn     Kind = "column"
	KindForeignKey Kind = "foreign-key"
)

// KindsOf reports which entity kinds the rule can validate. A rule may
// implement more than one kind.
func KindsOf(r Rule) []Kind {
	var kinds []Kind
	if _, ok := r.(TableRule); ok {
		kinds = append(kinds, KindTable)
	}
	if _, ok := r.(ColumnRule); ok {
		kinds = append(kinds, KindColumn)
	}
	if _, ok := r.(ForeignKeyRule); ok {
		kinds = append(kinds, KindForeignKey)
	}
	return kinds
}

// RuleInfo is rule metadata for documentation and tooling.
type RuleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kinds       []Kind `json:"kinds"`
}

// GetRuleInfo extracts metadata from a rule.
func GetRuleInfo(r Rule) RuleInfo {
	return RuleInfo{
		Name:        r.Name(),
		Description: r.Description(),
		Kinds:       KindsOf(r),
	}
}

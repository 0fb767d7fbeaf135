package lint

// Database is the root entity handed to every rule. Rules receive the
// database alongside the entity under validation so cross-entity checks
// (extension hierarchies, referenced tables) need no global state.
type Database interface {
	// Tables returns every table in the schema, in declaration order.
	Tables() []Table
}

// Table exposes the capabilities table rules validate against.
type Table interface {
	// Name returns the table name as declared.
	Name() string

	// Columns returns the table's columns in declaration order.
	Columns() []Column

	// ForeignKeys returns the table's foreign keys in declaration order.
	ForeignKeys() []ForeignKey

	// CheckConstraints returns the table-level check constraints.
	CheckConstraints() []CheckConstraint

	// Indices returns every index declared on the table.
	Indices() []Index

	// UniqueIndices returns the subset of Indices with a uniqueness
	// guarantee, primary keys included.
	UniqueIndices() []Index

	// PrimaryKeyColumns returns the primary key columns in declaration
	// order. Empty when the table has no primary key.
	PrimaryKeyColumns() []Column

	// IsExtension reports whether the table extends at least one other
	// table, i.e. its primary key is also a foreign key onto another
	// table's primary key.
	IsExtension() bool

	// ExtendedTables returns the tables this table directly extends.
	ExtendedTables() []Table

	// ReferencedTablesViaColumn returns the tables reachable through
	// foreign keys that include the given column on the host side.
	ReferencedTablesViaColumn(column Column) []Table

	// HasRowLevelSecurity reports whether row level security is enabled.
	HasRowLevelSecurity() bool

	// Policies returns the names of the policies declared on the table.
	Policies() []string
}

// Column exposes the capabilities column rules validate against.
type Column interface {
	// Name returns the column name as declared.
	Name() string

	// Table returns the table the column belongs to.
	Table() Table

	// NormalizedDataType returns the canonical form of the column's data
	// type, e.g. "integer" for INT4 or "text" for VARCHAR(255).
	NormalizedDataType() string

	// IsPrimaryKey reports whether the column is part of the primary key.
	IsPrimaryKey() bool

	// IsGenerated reports whether the column value is generated, e.g.
	// SERIAL or AUTOINCREMENT.
	IsGenerated() bool

	// HasDefault reports whether the column declares a DEFAULT value.
	HasDefault() bool

	// IsTextual reports whether the column stores character data.
	IsTextual() bool

	// CheckConstraints returns the check constraints that mention this
	// column and no other.
	CheckConstraints() []CheckConstraint

	// IsCompatibleWith reports whether a foreign key from this column to
	// the other column is sound: not both generated, matching normalized
	// data types, and overlapping table hierarchies.
	IsCompatibleWith(other Column) bool
}

// ForeignKey exposes the capabilities foreign key rules validate against.
// Host and referenced column slices have equal, non-zero length and keep
// declaration order.
type ForeignKey interface {
	// Name returns the constraint name, or "" when unnamed.
	Name() string

	// HostTable returns the table declaring the foreign key.
	HostTable() Table

	// ReferencedTable returns the table the foreign key points at.
	ReferencedTable() Table

	// HostColumns returns the declaring table's columns, in declaration
	// order.
	HostColumns() []Column

	// ReferencedColumns returns the referenced table's columns, in
	// declaration order.
	ReferencedColumns() []Column

	// OnDelete returns the normalized ON DELETE action, e.g. "CASCADE" or
	// "NO ACTION".
	OnDelete() string
}

// CheckConstraint is a single check constraint in canonical form.
type CheckConstraint interface {
	// Expression returns the canonical constraint expression, without the
	// CHECK keyword or outer parentheses.
	Expression() string

	// IsTautology reports whether the expression is always true.
	IsTautology() bool

	// IsNegation reports whether the expression is always false.
	IsNegation() bool

	// IsNotEmptyText reports whether the expression requires a textual
	// column to be non-empty.
	IsNotEmptyText() bool

	// UpperBoundTextLimit returns the inclusive upper bound the expression
	// places on a textual column's length, if it places one.
	UpperBoundTextLimit() (int, bool)
}

// Index is a single index declaration.
type Index interface {
	// Name returns the index name.
	Name() string

	// Columns returns the indexed columns in index order.
	Columns() []Column

	// IsUnique reports whether the index guarantees uniqueness.
	IsUnique() bool

	// Expression returns the canonical comparison key for the index, the
	// indexed column names joined by ", ".
	Expression() string
}

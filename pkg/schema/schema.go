package schema

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// Database is the root of the model. Tables keep declaration order.
type Database struct {
	name   string
	tables []*Table
}

// NewDatabase returns an empty database model.
func NewDatabase(name string) *Database {
	return &Database{name: name}
}

// Name returns the database (or namespace) name the model was built from.
func (d *Database) Name() string { return d.name }

// AddTable declares a table and returns it for further construction.
func (d *Database) AddTable(name string) *Table {
	t := &Table{database: d, name: name}
	d.tables = append(d.tables, t)
	return t
}

// Table returns the table with the given name. Lookup is case-insensitive.
func (d *Database) Table(name string) (*Table, bool) {
	for _, t := range d.tables {
		if strings.EqualFold(t.name, name) {
			return t, true
		}
	}
	return nil, false
}

// Tables returns every table in declaration order.
func (d *Database) Tables() []lint.Table {
	tables := make([]lint.Table, len(d.tables))
	for i, t := range d.tables {
		tables[i] = t
	}
	return tables
}

// Table is a single table with its columns, constraints, and indices.
type Table struct {
	database         *Database
	name             string
	columns          []*Column
	foreignKeys      []*ForeignKey
	checks           []*CheckConstraint
	indices          []*Index
	rowLevelSecurity bool
	policies         []string
}

// Name returns the table name as declared.
func (t *Table) Name() string { return t.name }

// Database returns the database the table belongs to.
func (t *Table) Database() *Database { return t.database }

// AddColumn declares a column and returns it for further construction.
func (t *Table) AddColumn(name, dataType string) *Column {
	c := &Column{table: t, name: name, dataType: dataType}
	t.columns = append(t.columns, c)
	return c
}

// Column returns the column with the given name. Lookup is
// case-insensitive.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if strings.EqualFold(c.name, name) {
			return c, true
		}
	}
	return nil, false
}

// AddCheck records a check constraint. The expression is canonicalized and
// its referenced identifiers are extracted once, so a constraint mentioning
// exactly one column surfaces through that column's CheckConstraints.
func (t *Table) AddCheck(expression string) *CheckConstraint {
	expr := Canonical(expression)
	check := &CheckConstraint{
		table:      t,
		expression: expr,
		columns:    ReferencedColumns(expr),
	}
	t.checks = append(t.checks, check)
	return check
}

// AddIndex declares an index over the named columns. The columns must
// already be declared on the table.
func (t *Table) AddIndex(name string, unique bool, columns ...string) (*Index, error) {
	idx := &Index{table: t, name: name, unique: unique}
	for _, col := range columns {
		c, ok := t.Column(col)
		if !ok {
			return nil, fmt.Errorf("index %q: unknown column %q on table %q", name, col, t.name)
		}
		idx.columns = append(idx.columns, c)
	}
	t.indices = append(t.indices, idx)
	return idx, nil
}

// AddForeignKey declares a foreign key from the named host columns to the
// named columns of the referenced table. Host columns must exist on the
// table, and the referenced table with its columns must already be in the
// database. Name may be empty for unnamed constraints.
func (t *Table) AddForeignKey(name string, hostColumns []string, referencedTable string, referencedColumns []string) (*ForeignKey, error) {
	if len(hostColumns) == 0 || len(hostColumns) != len(referencedColumns) {
		return nil, fmt.Errorf("foreign key on %q: %d host columns against %d referenced columns",
			t.name, len(hostColumns), len(referencedColumns))
	}
	ref, ok := t.database.Table(referencedTable)
	if !ok {
		return nil, fmt.Errorf("foreign key on %q: unknown referenced table %q", t.name, referencedTable)
	}
	fk := &ForeignKey{name: name, hostTable: t, referencedTable: ref}
	for _, col := range hostColumns {
		c, ok := t.Column(col)
		if !ok {
			return nil, fmt.Errorf("foreign key on %q: unknown host column %q", t.name, col)
		}
		fk.hostColumns = append(fk.hostColumns, c)
	}
	for _, col := range referencedColumns {
		c, ok := ref.Column(col)
		if !ok {
			return nil, fmt.Errorf("foreign key on %q: unknown column %q on referenced table %q",
				t.name, col, ref.name)
		}
		fk.referencedColumns = append(fk.referencedColumns, c)
	}
	t.foreignKeys = append(t.foreignKeys, fk)
	return fk, nil
}

// EnableRowLevelSecurity marks the table as having row level security.
func (t *Table) EnableRowLevelSecurity() *Table {
	t.rowLevelSecurity = true
	return t
}

// AddPolicy records a policy name declared on the table.
func (t *Table) AddPolicy(name string) *Table {
	t.policies = append(t.policies, name)
	return t
}

// Columns returns the table's columns in declaration order.
func (t *Table) Columns() []lint.Column {
	columns := make([]lint.Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c
	}
	return columns
}

// ForeignKeys returns the table's foreign keys in declaration order.
func (t *Table) ForeignKeys() []lint.ForeignKey {
	keys := make([]lint.ForeignKey, len(t.foreignKeys))
	for i, fk := range t.foreignKeys {
		keys[i] = fk
	}
	return keys
}

// CheckConstraints returns the check constraints declared on the table.
func (t *Table) CheckConstraints() []lint.CheckConstraint {
	checks := make([]lint.CheckConstraint, len(t.checks))
	for i, c := range t.checks {
		checks[i] = c
	}
	return checks
}

// Indices returns every declared index in declaration order.
func (t *Table) Indices() []lint.Index {
	indices := make([]lint.Index, len(t.indices))
	for i, idx := range t.indices {
		indices[i] = idx
	}
	return indices
}

// UniqueIndices returns the declared unique indices plus the implicit
// primary key index, unless a declared index already covers exactly the
// primary key columns.
func (t *Table) UniqueIndices() []lint.Index {
	var indices []lint.Index
	for _, idx := range t.indices {
		if idx.unique {
			indices = append(indices, idx)
		}
	}
	if pk := t.primaryKey(); len(pk) > 0 {
		implicit := &Index{table: t, name: t.name + "_pkey", unique: true, columns: pk}
		covered := false
		for _, idx := range indices {
			if idx.Expression() == implicit.Expression() {
				covered = true
				break
			}
		}
		if !covered {
			indices = append(indices, implicit)
		}
	}
	return indices
}

// primaryKey returns the primary key columns in declaration order.
func (t *Table) primaryKey() []*Column {
	var pk []*Column
	for _, c := range t.columns {
		if c.primaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// PrimaryKeyColumns returns the primary key columns in declaration order.
func (t *Table) PrimaryKeyColumns() []lint.Column {
	pk := t.primaryKey()
	columns := make([]lint.Column, len(pk))
	for i, c := range pk {
		columns[i] = c
	}
	return columns
}

// extensionKeys returns the foreign keys forming extension edges: keys
// whose host columns are exactly the table's primary key and whose
// referenced columns are exactly the referenced table's primary key.
func (t *Table) extensionKeys() []*ForeignKey {
	pk := t.primaryKey()
	if len(pk) == 0 {
		return nil
	}
	var edges []*ForeignKey
	for _, fk := range t.foreignKeys {
		if !sameColumnSet(fk.hostColumns, pk) {
			continue
		}
		refPK := fk.referencedTable.primaryKey()
		if len(refPK) == 0 || !sameColumnSet(fk.referencedColumns, refPK) {
			continue
		}
		edges = append(edges, fk)
	}
	return edges
}

// IsExtension reports whether the table extends at least one other table.
func (t *Table) IsExtension() bool {
	return len(t.extensionKeys()) > 0
}

// ExtendedTables returns the tables this table directly extends, in
// foreign key declaration order.
func (t *Table) ExtendedTables() []lint.Table {
	var tables []lint.Table
	seen := make(map[*Table]struct{})
	for _, fk := range t.extensionKeys() {
		if _, dup := seen[fk.referencedTable]; dup {
			continue
		}
		seen[fk.referencedTable] = struct{}{}
		tables = append(tables, fk.referencedTable)
	}
	return tables
}

// ReferencedTablesViaColumn returns the tables reachable through foreign
// keys that include the given column on the host side.
func (t *Table) ReferencedTablesViaColumn(column lint.Column) []lint.Table {
	var tables []lint.Table
	seen := make(map[*Table]struct{})
	for _, fk := range t.foreignKeys {
		for _, host := range fk.hostColumns {
			if column != lint.Column(host) {
				continue
			}
			if _, dup := seen[fk.referencedTable]; !dup {
				seen[fk.referencedTable] = struct{}{}
				tables = append(tables, fk.referencedTable)
			}
			break
		}
	}
	return tables
}

// HasRowLevelSecurity reports whether row level security is enabled.
func (t *Table) HasRowLevelSecurity() bool { return t.rowLevelSecurity }

// Policies returns the names of the policies declared on the table.
func (t *Table) Policies() []string { return t.policies }

// Column is a single column declaration.
type Column struct {
	table      *Table
	name       string
	dataType   string
	primaryKey bool
	generated  bool
	hasDefault bool
}

// Name returns the column name as declared.
func (c *Column) Name() string { return c.name }

// Table returns the table the column belongs to.
func (c *Column) Table() lint.Table { return c.table }

// DataType returns the data type as declared, e.g. "VARCHAR(255)".
func (c *Column) DataType() string { return c.dataType }

// NormalizedDataType returns the canonical form of the declared type.
func (c *Column) NormalizedDataType() string { return NormalizeDataType(c.dataType) }

// SetPrimaryKey marks the column as part of the primary key.
func (c *Column) SetPrimaryKey() *Column {
	c.primaryKey = true
	return c
}

// SetGenerated marks the column value as generated, e.g. SERIAL or
// AUTOINCREMENT.
func (c *Column) SetGenerated() *Column {
	c.generated = true
	return c
}

// SetDefault marks the column as declaring a DEFAULT value.
func (c *Column) SetDefault() *Column {
	c.hasDefault = true
	return c
}

// IsPrimaryKey reports whether the column is part of the primary key.
func (c *Column) IsPrimaryKey() bool { return c.primaryKey }

// IsGenerated reports whether the column value is generated.
func (c *Column) IsGenerated() bool { return c.generated }

// HasDefault reports whether the column declares a DEFAULT value.
func (c *Column) HasDefault() bool { return c.hasDefault }

// IsTextual reports whether the column stores character data.
func (c *Column) IsTextual() bool { return IsTextualType(c.dataType) }

// CheckConstraints returns the table's check constraints that mention this
// column and no other.
func (c *Column) CheckConstraints() []lint.CheckConstraint {
	var checks []lint.CheckConstraint
	for _, check := range c.table.checks {
		if len(check.columns) == 1 && strings.EqualFold(check.columns[0], c.name) {
			checks = append(checks, check)
		}
	}
	return checks
}

// IsCompatibleWith reports whether a foreign key from this column to the
// other column is sound. Columns are incompatible when both sides are
// generated, when their normalized data types differ, or when their
// reachable table hierarchies share no table.
func (c *Column) IsCompatibleWith(other lint.Column) bool {
	if c.IsGenerated() && other.IsGenerated() {
		return false
	}
	if c.NormalizedDataType() != other.NormalizedDataType() {
		return false
	}
	return hierarchiesOverlap(c, other)
}

// reachableTables returns the hierarchy a column belongs to: the tables it
// references through foreign keys, plus its own table when it is part of
// the primary key.
func reachableTables(column lint.Column) []lint.Table {
	tables := column.Table().ReferencedTablesViaColumn(column)
	if column.IsPrimaryKey() {
		tables = append(tables, column.Table())
	}
	return tables
}

func hierarchiesOverlap(a, b lint.Column) bool {
	reachable := reachableTables(b)
	for _, at := range reachableTables(a) {
		for _, bt := range reachable {
			if at == bt {
				return true
			}
		}
	}
	return false
}

// ForeignKey is a single foreign key declaration. Host and referenced
// columns have equal length and keep declaration order.
type ForeignKey struct {
	name              string
	hostTable         *Table
	referencedTable   *Table
	hostColumns       []*Column
	referencedColumns []*Column
	onDelete          string
}

// Name returns the constraint name, or "" when unnamed.
func (fk *ForeignKey) Name() string { return fk.name }

// HostTable returns the table declaring the foreign key.
func (fk *ForeignKey) HostTable() lint.Table { return fk.hostTable }

// ReferencedTable returns the table the foreign key points at.
func (fk *ForeignKey) ReferencedTable() lint.Table { return fk.referencedTable }

// HostColumns returns the declaring table's columns in declaration order.
func (fk *ForeignKey) HostColumns() []lint.Column {
	columns := make([]lint.Column, len(fk.hostColumns))
	for i, c := range fk.hostColumns {
		columns[i] = c
	}
	return columns
}

// ReferencedColumns returns the referenced table's columns in declaration
// order.
func (fk *ForeignKey) ReferencedColumns() []lint.Column {
	columns := make([]lint.Column, len(fk.referencedColumns))
	for i, c := range fk.referencedColumns {
		columns[i] = c
	}
	return columns
}

// SetOnDelete records the ON DELETE action. The action is normalized to
// upper case with single spaces.
func (fk *ForeignKey) SetOnDelete(action string) *ForeignKey {
	fk.onDelete = strings.ToUpper(strings.Join(strings.Fields(action), " "))
	return fk
}

// OnDelete returns the normalized ON DELETE action. Unset actions report
// "NO ACTION".
func (fk *ForeignKey) OnDelete() string {
	if fk.onDelete == "" {
		return "NO ACTION"
	}
	return fk.onDelete
}

// CheckConstraint is a check constraint in canonical form.
type CheckConstraint struct {
	table      *Table
	expression string
	columns    []string
}

// Expression returns the canonical constraint expression.
func (c *CheckConstraint) Expression() string { return c.expression }

// IsTautology reports whether the expression is always true.
func (c *CheckConstraint) IsTautology() bool { return IsTautology(c.expression) }

// IsNegation reports whether the expression is always false.
func (c *CheckConstraint) IsNegation() bool { return IsNegation(c.expression) }

// IsNotEmptyText reports whether the expression requires a textual column
// to be non-empty.
func (c *CheckConstraint) IsNotEmptyText() bool { return IsNotEmptyText(c.expression) }

// UpperBoundTextLimit returns the inclusive upper bound the expression
// places on a textual column's length, if it places one.
func (c *CheckConstraint) UpperBoundTextLimit() (int, bool) {
	return UpperBoundTextLimit(c.expression)
}

// Index is a single index declaration.
type Index struct {
	table   *Table
	name    string
	unique  bool
	columns []*Column
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// IsUnique reports whether the index guarantees uniqueness.
func (i *Index) IsUnique() bool { return i.unique }

// Columns returns the indexed columns in index order.
func (i *Index) Columns() []lint.Column {
	columns := make([]lint.Column, len(i.columns))
	for j, c := range i.columns {
		columns[j] = c
	}
	return columns
}

// Expression returns the indexed column names joined by ", ".
func (i *Index) Expression() string {
	names := make([]string, len(i.columns))
	for j, c := range i.columns {
		names[j] = c.name
	}
	return strings.Join(names, ", ")
}

// sameColumnSet reports whether the two column lists contain the same
// columns, order ignored.
func sameColumnSet(a, b []*Column) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[*Column]struct{}, len(a))
	for _, c := range a {
		seen[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := seen[c]; !ok {
			return false
		}
	}
	return true
}

// Interface conformance.
var (
	_ lint.Database        = (*Database)(nil)
	_ lint.Table           = (*Table)(nil)
	_ lint.Column          = (*Column)(nil)
	_ lint.ForeignKey      = (*ForeignKey)(nil)
	_ lint.CheckConstraint = (*CheckConstraint)(nil)
	_ lint.Index           = (*Index)(nil)
)

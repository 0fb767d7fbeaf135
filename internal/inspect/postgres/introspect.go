package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// columnRow holds a row from information_schema.columns.
type columnRow struct {
	TableName  string  `db:"table_name"`
	ColumnName string  `db:"column_name"`
	DataType   string  `db:"data_type"`
	UDTName    string  `db:"udt_name"`
	Default    *string `db:"column_default"`
	IsIdentity string  `db:"is_identity"`
	MaxLength  *int64  `db:"character_maximum_length"`
	Position   int     `db:"ordinal_position"`
}

// pkRow holds one primary key column membership.
type pkRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
}

// fkRow holds one column pair of a foreign key constraint. Composite keys
// span several rows sharing the constraint name, ordered by position.
type fkRow struct {
	TableName        string `db:"table_name"`
	ConstraintName   string `db:"constraint_name"`
	ReferencedTable  string `db:"referenced_table"`
	HostColumn       string `db:"host_column"`
	ReferencedColumn string `db:"referenced_column"`
	DeleteAction     string `db:"delete_action"`
}

// checkRow holds a check constraint definition as printed by
// pg_get_constraintdef.
type checkRow struct {
	TableName  string `db:"table_name"`
	Definition string `db:"definition"`
}

// indexRow holds one column of an index. Multi-column indexes span several
// rows sharing the index name, ordered by position.
type indexRow struct {
	TableName  string `db:"table_name"`
	IndexName  string `db:"index_name"`
	ColumnName string `db:"column_name"`
	IsUnique   bool   `db:"is_unique"`
}

const tablesQuery = `SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const columnsQuery = `SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		c.udt_name,
		c.column_default,
		c.is_identity,
		c.character_maximum_length,
		c.ordinal_position
	FROM information_schema.columns c
	WHERE c.table_schema = $1
	ORDER BY c.table_name, c.ordinal_position`

const primaryKeysQuery = `SELECT kcu.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1
	ORDER BY kcu.table_name, kcu.ordinal_position`

// foreignKeysQuery pairs host and referenced columns positionally through
// unnest WITH ORDINALITY, which information_schema cannot do for composite
// keys.
const foreignKeysQuery = `SELECT
		tbl.relname AS table_name,
		con.conname AS constraint_name,
		ref.relname AS referenced_table,
		hostatt.attname AS host_column,
		refatt.attname AS referenced_column,
		con.confdeltype AS delete_action
	FROM pg_constraint con
	JOIN pg_class tbl ON tbl.oid = con.conrelid
	JOIN pg_namespace ns ON ns.oid = tbl.relnamespace
	JOIN pg_class ref ON ref.oid = con.confrelid
	CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS pair(hostnum, refnum, ord)
	JOIN pg_attribute hostatt ON hostatt.attrelid = con.conrelid AND hostatt.attnum = pair.hostnum
	JOIN pg_attribute refatt ON refatt.attrelid = con.confrelid AND refatt.attnum = pair.refnum
	WHERE con.contype = 'f' AND ns.nspname = $1
	ORDER BY tbl.relname, con.conname, pair.ord`

const checksQuery = `SELECT
		tbl.relname AS table_name,
		pg_get_constraintdef(con.oid) AS definition
	FROM pg_constraint con
	JOIN pg_class tbl ON tbl.oid = con.conrelid
	JOIN pg_namespace ns ON ns.oid = tbl.relnamespace
	WHERE con.contype = 'c' AND ns.nspname = $1
	ORDER BY tbl.relname, con.conname`

// indicesQuery lists non-primary-key index columns in index order. Indexes
// with expression members are excluded since attnum 0 marks an expression.
const indicesQuery = `SELECT
		tbl.relname AS table_name,
		idx.relname AS index_name,
		att.attname AS column_name,
		i.indisunique AS is_unique
	FROM pg_index i
	JOIN pg_class idx ON idx.oid = i.indexrelid
	JOIN pg_class tbl ON tbl.oid = i.indrelid
	JOIN pg_namespace ns ON ns.oid = tbl.relnamespace
	CROSS JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS member(attnum, ord)
	JOIN pg_attribute att ON att.attrelid = i.indrelid AND att.attnum = member.attnum
	WHERE ns.nspname = $1
		AND NOT i.indisprimary
		AND 0 <> ALL (i.indkey::smallint[])
	ORDER BY tbl.relname, idx.relname, member.ord`

const rowLevelSecurityQuery = `SELECT c.relname AS table_name
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	WHERE n.nspname = $1 AND c.relkind = 'r' AND c.relrowsecurity
	ORDER BY c.relname`

const policiesQuery = `SELECT tablename, policyname
	FROM pg_policies
	WHERE schemaname = $1
	ORDER BY tablename, policyname`

// Schema introspects every base table of the configured schema into the
// lint model.
func (i *Inspector) Schema(ctx context.Context) (*schema.Database, error) {
	if i.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	var names []string
	if err := i.db.SelectContext(ctx, &names, tablesQuery, i.schemaName); err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}

	db := schema.NewDatabase(i.schemaName)
	if err := i.loadColumns(ctx, db, names); err != nil {
		return nil, err
	}
	if err := i.loadPrimaryKeys(ctx, db); err != nil {
		return nil, err
	}
	if err := i.loadForeignKeys(ctx, db); err != nil {
		return nil, err
	}
	if err := i.loadChecks(ctx, db); err != nil {
		return nil, err
	}
	if err := i.loadIndices(ctx, db); err != nil {
		return nil, err
	}
	if err := i.loadRowLevelSecurity(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func (i *Inspector) loadColumns(ctx context.Context, db *schema.Database, names []string) error {
	var rows []columnRow
	if err := i.db.SelectContext(ctx, &rows, columnsQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect columns: %w", err)
	}

	byTable := make(map[string][]columnRow)
	for _, row := range rows {
		byTable[row.TableName] = append(byTable[row.TableName], row)
	}

	for _, name := range names {
		table := db.AddTable(name)
		for _, row := range byTable[name] {
			column := table.AddColumn(row.ColumnName, composeDataType(row))
			switch {
			case row.IsIdentity == "YES":
				column.SetGenerated()
			case row.Default != nil && strings.Contains(*row.Default, "nextval"):
				// Serial columns carry a nextval() default; the model
				// treats them as generated rather than defaulted.
				column.SetGenerated()
			case row.Default != nil:
				column.SetDefault()
			}
		}
	}
	return nil
}

func (i *Inspector) loadPrimaryKeys(ctx context.Context, db *schema.Database) error {
	var rows []pkRow
	if err := i.db.SelectContext(ctx, &rows, primaryKeysQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect primary keys: %w", err)
	}

	for _, row := range rows {
		table, ok := db.Table(row.TableName)
		if !ok {
			continue
		}
		column, ok := table.Column(row.ColumnName)
		if !ok {
			return fmt.Errorf("primary key of %q names unknown column %q", row.TableName, row.ColumnName)
		}
		column.SetPrimaryKey()
	}
	return nil
}

func (i *Inspector) loadForeignKeys(ctx context.Context, db *schema.Database) error {
	var rows []fkRow
	if err := i.db.SelectContext(ctx, &rows, foreignKeysQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect foreign keys: %w", err)
	}

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) &&
			rows[end].TableName == rows[start].TableName &&
			rows[end].ConstraintName == rows[start].ConstraintName {
			end++
		}
		group := rows[start:end]
		start = end

		table, ok := db.Table(group[0].TableName)
		if !ok {
			continue
		}
		if _, ok := db.Table(group[0].ReferencedTable); !ok {
			// Reference leaves the introspected schema; the model cannot
			// hold it.
			i.logger.Debug("skipping foreign key onto table outside schema",
				"constraint", group[0].ConstraintName,
				"referenced", group[0].ReferencedTable)
			continue
		}

		hostColumns := make([]string, len(group))
		referencedColumns := make([]string, len(group))
		for n, row := range group {
			hostColumns[n] = row.HostColumn
			referencedColumns[n] = row.ReferencedColumn
		}

		fk, err := table.AddForeignKey(group[0].ConstraintName, hostColumns, group[0].ReferencedTable, referencedColumns)
		if err != nil {
			return fmt.Errorf("introspect foreign key %q: %w", group[0].ConstraintName, err)
		}
		fk.SetOnDelete(deleteAction(group[0].DeleteAction))
	}
	return nil
}

func (i *Inspector) loadChecks(ctx context.Context, db *schema.Database) error {
	var rows []checkRow
	if err := i.db.SelectContext(ctx, &rows, checksQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect check constraints: %w", err)
	}

	for _, row := range rows {
		table, ok := db.Table(row.TableName)
		if !ok {
			continue
		}
		table.AddCheck(row.Definition)
	}
	return nil
}

func (i *Inspector) loadIndices(ctx context.Context, db *schema.Database) error {
	var rows []indexRow
	if err := i.db.SelectContext(ctx, &rows, indicesQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect indices: %w", err)
	}

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) &&
			rows[end].TableName == rows[start].TableName &&
			rows[end].IndexName == rows[start].IndexName {
			end++
		}
		group := rows[start:end]
		start = end

		table, ok := db.Table(group[0].TableName)
		if !ok {
			continue
		}
		columns := make([]string, len(group))
		for n, row := range group {
			columns[n] = row.ColumnName
		}
		if _, err := table.AddIndex(group[0].IndexName, group[0].IsUnique, columns...); err != nil {
			return fmt.Errorf("introspect index %q: %w", group[0].IndexName, err)
		}
	}
	return nil
}

func (i *Inspector) loadRowLevelSecurity(ctx context.Context, db *schema.Database) error {
	var secured []string
	if err := i.db.SelectContext(ctx, &secured, rowLevelSecurityQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect row level security: %w", err)
	}
	for _, name := range secured {
		if table, ok := db.Table(name); ok {
			table.EnableRowLevelSecurity()
		}
	}

	var policies []struct {
		TableName  string `db:"tablename"`
		PolicyName string `db:"policyname"`
	}
	if err := i.db.SelectContext(ctx, &policies, policiesQuery, i.schemaName); err != nil {
		return fmt.Errorf("introspect policies: %w", err)
	}
	for _, row := range policies {
		if table, ok := db.Table(row.TableName); ok {
			table.AddPolicy(row.PolicyName)
		}
	}
	return nil
}

// composeDataType rebuilds the declared type from information_schema
// columns: the length modifier is appended when present, and USER-DEFINED
// or ARRAY types fall back to the underlying udt name.
func composeDataType(row columnRow) string {
	base := row.DataType
	switch strings.ToUpper(base) {
	case "USER-DEFINED", "ARRAY":
		base = row.UDTName
	}
	if row.MaxLength != nil {
		return fmt.Sprintf("%s(%d)", base, *row.MaxLength)
	}
	return base
}

// deleteAction expands pg_constraint.confdeltype codes.
func deleteAction(code string) string {
	switch code {
	case "a":
		return "NO ACTION"
	case "r":
		return "RESTRICT"
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

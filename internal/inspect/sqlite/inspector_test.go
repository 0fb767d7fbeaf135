package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect/sqlite"
	"github.com/earth-metabolome-initiative/sql-rules/internal/testutil"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func findForeignKey(t *testing.T, table lint.Table, hostColumn string) lint.ForeignKey {
	t.Helper()
	for _, fk := range table.ForeignKeys() {
		for _, col := range fk.HostColumns() {
			if col.Name() == hostColumn {
				return fk
			}
		}
	}
	t.Fatalf("no foreign key on %s hosts column %s", table.Name(), hostColumn)
	return nil
}

func TestLoadDDLIntrospectsTables(t *testing.T) {
	const ddl = `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL CHECK (name <> ''),
			email TEXT DEFAULT 'unknown',
			CHECK (length(name) <= 255)
		);
		CREATE UNIQUE INDEX users_email_key ON users (email);

		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		);
		CREATE INDEX orders_user_idx ON orders (user_id);
	`

	db, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), ddl)
	require.NoError(t, err)

	tables := db.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "orders", tables[0].Name())
	assert.Equal(t, "users", tables[1].Name())

	users, ok := db.Table("users")
	require.True(t, ok)

	columns := users.Columns()
	require.Len(t, columns, 3)
	assert.Equal(t, "id", columns[0].Name())
	assert.Equal(t, "name", columns[1].Name())
	assert.Equal(t, "email", columns[2].Name())

	assert.True(t, columns[0].IsPrimaryKey())
	assert.True(t, columns[0].IsGenerated())
	assert.False(t, columns[0].HasDefault())

	assert.False(t, columns[1].IsPrimaryKey())
	assert.False(t, columns[1].IsGenerated())
	assert.True(t, columns[1].IsTextual())

	assert.True(t, columns[2].HasDefault())

	checks := users.CheckConstraints()
	require.Len(t, checks, 2)
	assert.Equal(t, "name <> ''", checks[0].Expression())
	assert.Equal(t, "length(name) <= 255", checks[1].Expression())

	nameChecks := columns[1].CheckConstraints()
	require.Len(t, nameChecks, 2)
	assert.True(t, nameChecks[0].IsNotEmptyText())
	limit, bounded := nameChecks[1].UpperBoundTextLimit()
	require.True(t, bounded)
	assert.Equal(t, 255, limit)

	indices := users.Indices()
	require.Len(t, indices, 1)
	assert.Equal(t, "users_email_key", indices[0].Name())
	assert.True(t, indices[0].IsUnique())

	unique := users.UniqueIndices()
	require.Len(t, unique, 2)
	assert.Equal(t, "users_email_key", unique[0].Name())
	assert.Equal(t, "users_pkey", unique[1].Name())
	assert.Equal(t, "id", unique[1].Expression())

	orders, ok := db.Table("orders")
	require.True(t, ok)
	require.Len(t, orders.ForeignKeys(), 1)

	fk := findForeignKey(t, orders, "user_id")
	assert.Empty(t, fk.Name())
	assert.Equal(t, "users", fk.ReferencedTable().Name())
	require.Len(t, fk.ReferencedColumns(), 1)
	assert.Equal(t, "id", fk.ReferencedColumns()[0].Name())
	assert.Equal(t, "CASCADE", fk.OnDelete())

	orderUnique := orders.UniqueIndices()
	require.Len(t, orderUnique, 1)
	assert.Equal(t, "orders_pkey", orderUnique[0].Name())
}

func TestLoadDDLCompositeForeignKey(t *testing.T) {
	const ddl = `
		CREATE TABLE grids (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (x, y)
		);
		CREATE TABLE cells (
			gx INTEGER NOT NULL,
			gy INTEGER NOT NULL,
			value TEXT,
			FOREIGN KEY (gx, gy) REFERENCES grids (x, y)
		);
	`

	db, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), ddl)
	require.NoError(t, err)

	grids, ok := db.Table("grids")
	require.True(t, ok)
	key := grids.PrimaryKeyColumns()
	require.Len(t, key, 2)
	assert.Equal(t, "x", key[0].Name())
	assert.Equal(t, "y", key[1].Name())
	assert.False(t, key[0].IsGenerated())

	cells, ok := db.Table("cells")
	require.True(t, ok)
	require.Len(t, cells.ForeignKeys(), 1)

	fk := cells.ForeignKeys()[0]
	require.Len(t, fk.HostColumns(), 2)
	assert.Equal(t, "gx", fk.HostColumns()[0].Name())
	assert.Equal(t, "gy", fk.HostColumns()[1].Name())
	assert.Equal(t, "x", fk.ReferencedColumns()[0].Name())
	assert.Equal(t, "y", fk.ReferencedColumns()[1].Name())
	assert.Equal(t, "NO ACTION", fk.OnDelete())
}

func TestLoadDDLShortFormReference(t *testing.T) {
	const ddl = `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY
		);
		CREATE TABLE sessions (
			id INTEGER PRIMARY KEY,
			user_id INTEGER REFERENCES users
		);
	`

	db, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), ddl)
	require.NoError(t, err)

	sessions, ok := db.Table("sessions")
	require.True(t, ok)

	fk := findForeignKey(t, sessions, "user_id")
	require.Len(t, fk.ReferencedColumns(), 1)
	assert.Equal(t, "id", fk.ReferencedColumns()[0].Name())
	assert.Equal(t, "users", fk.ReferencedTable().Name())
}

func TestLoadDDLMultipleForeignKeys(t *testing.T) {
	const ddl = `
		CREATE TABLE owners (id INTEGER PRIMARY KEY);
		CREATE TABLE categories (id INTEGER PRIMARY KEY);
		CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			owner_id INTEGER,
			category_id INTEGER,
			FOREIGN KEY (owner_id) REFERENCES owners (id) ON DELETE SET NULL,
			FOREIGN KEY (category_id) REFERENCES categories (id)
		);
	`

	db, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), ddl)
	require.NoError(t, err)

	items, ok := db.Table("items")
	require.True(t, ok)
	require.Len(t, items.ForeignKeys(), 2)

	owner := findForeignKey(t, items, "owner_id")
	assert.Equal(t, "owners", owner.ReferencedTable().Name())
	assert.Equal(t, "SET NULL", owner.OnDelete())

	category := findForeignKey(t, items, "category_id")
	assert.Equal(t, "categories", category.ReferencedTable().Name())
	assert.Equal(t, "NO ACTION", category.OnDelete())
}

func TestLoadDDLSkipsExpressionIndices(t *testing.T) {
	const ddl = `
		CREATE TABLE documents (
			id INTEGER PRIMARY KEY,
			title TEXT
		);
		CREATE INDEX documents_title_lower_idx ON documents (lower(title));
		CREATE INDEX documents_title_idx ON documents (title);
	`

	db, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), ddl)
	require.NoError(t, err)

	documents, ok := db.Table("documents")
	require.True(t, ok)

	indices := documents.Indices()
	require.Len(t, indices, 1)
	assert.Equal(t, "documents_title_idx", indices[0].Name())
}

func TestLoadDDLInvalidStatement(t *testing.T) {
	_, err := sqlite.LoadDDL(context.Background(), testutil.NewTestLogger(t), "CREATE TABLE broken (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute ddl")
}

func TestInspectorSchemaRequiresConnection(t *testing.T) {
	insp, ok := sqlite.New(testutil.NewTestLogger(t)).(*sqlite.Inspector)
	require.True(t, ok)

	_, err := insp.Schema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}

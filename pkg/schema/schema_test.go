package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// buildShop returns a model with a users table, an orders table referencing
// it, and an employees table extending it.
func buildShop(t *testing.T) *schema.Database {
	t.Helper()

	db := schema.NewDatabase("shop")

	users := db.AddTable("users")
	users.AddColumn("id", "INTEGER").SetPrimaryKey().SetGenerated()
	users.AddColumn("name", "TEXT")

	orders := db.AddTable("orders")
	orders.AddColumn("id", "INTEGER").SetPrimaryKey().SetGenerated()
	orders.AddColumn("user_id", "INTEGER")
	_, err := orders.AddForeignKey("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"})
	require.NoError(t, err)

	employees := db.AddTable("employees")
	employees.AddColumn("id", "INTEGER").SetPrimaryKey()
	employees.AddColumn("badge", "TEXT")
	fk, err := employees.AddForeignKey("employees_id_fkey", []string{"id"}, "users", []string{"id"})
	require.NoError(t, err)
	fk.SetOnDelete("CASCADE")

	return db
}

func tableNames(tables []lint.Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	return names
}

func TestDatabaseKeepsDeclarationOrder(t *testing.T) {
	db := buildShop(t)

	assert.Equal(t, []string{"users", "orders", "employees"}, tableNames(db.Tables()))
}

func TestTableLookupIsCaseInsensitive(t *testing.T) {
	db := buildShop(t)

	table, ok := db.Table("USERS")
	require.True(t, ok)
	assert.Equal(t, "users", table.Name())

	_, ok = db.Table("missing")
	assert.False(t, ok)

	column, ok := table.Column("NAME")
	require.True(t, ok)
	assert.Equal(t, "name", column.Name())
}

func TestColumnsKeepBackReferences(t *testing.T) {
	db := buildShop(t)
	users, _ := db.Table("users")

	columns := users.Columns()
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Name())
	assert.Equal(t, "users", columns[0].Table().Name())
	assert.True(t, columns[0].IsPrimaryKey())
	assert.True(t, columns[0].IsGenerated())
	assert.False(t, columns[0].HasDefault())
	assert.False(t, columns[1].IsPrimaryKey())
	assert.True(t, columns[1].IsTextual())
}

func TestPrimaryKeyColumnsKeepDeclarationOrder(t *testing.T) {
	db := schema.NewDatabase("test")
	grades := db.AddTable("grades")
	grades.AddColumn("student_id", "INTEGER").SetPrimaryKey()
	grades.AddColumn("note", "TEXT")
	grades.AddColumn("course_id", "INTEGER").SetPrimaryKey()

	pk := grades.PrimaryKeyColumns()
	require.Len(t, pk, 2)
	assert.Equal(t, "student_id", pk[0].Name())
	assert.Equal(t, "course_id", pk[1].Name())
}

func TestAddForeignKeyErrors(t *testing.T) {
	tests := []struct {
		name     string
		host     []string
		refTable string
		ref      []string
		errMsg   string
	}{
		{
			name:     "unknown referenced table",
			host:     []string{"user_id"},
			refTable: "missing",
			ref:      []string{"id"},
			errMsg:   "unknown referenced table",
		},
		{
			name:     "unknown host column",
			host:     []string{"nope"},
			refTable: "users",
			ref:      []string{"id"},
			errMsg:   "unknown host column",
		},
		{
			name:     "unknown referenced column",
			host:     []string{"user_id"},
			refTable: "users",
			ref:      []string{"nope"},
			errMsg:   "unknown column",
		},
		{
			name:     "length mismatch",
			host:     []string{"user_id"},
			refTable: "users",
			ref:      []string{"id", "name"},
			errMsg:   "host columns against",
		},
		{
			name:     "no columns",
			host:     nil,
			refTable: "users",
			ref:      nil,
			errMsg:   "host columns against",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := buildShop(t)
			orders, _ := db.Table("orders")

			_, err := orders.AddForeignKey("fk", tt.host, tt.refTable, tt.ref)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForeignKeyOnDeleteNormalized(t *testing.T) {
	db := buildShop(t)
	orders, _ := db.Table("orders")

	fk := orders.ForeignKeys()[0]
	assert.Equal(t, "NO ACTION", fk.OnDelete())

	invoices := db.AddTable("invoices")
	invoices.AddColumn("id", "INTEGER").SetPrimaryKey()
	invoices.AddColumn("user_id", "INTEGER")
	added, err := invoices.AddForeignKey("", []string{"user_id"}, "users", []string{"id"})
	require.NoError(t, err)
	added.SetOnDelete("set   null")
	assert.Equal(t, "SET NULL", added.OnDelete())
	assert.Equal(t, "", added.Name())
}

func TestExtensionDerivedFromPrimaryKeyForeignKey(t *testing.T) {
	db := buildShop(t)

	employees, _ := db.Table("employees")
	assert.True(t, employees.IsExtension())
	assert.Equal(t, []string{"users"}, tableNames(employees.ExtendedTables()))

	orders, _ := db.Table("orders")
	assert.False(t, orders.IsExtension(), "a plain foreign key is not an extension edge")
	assert.Empty(t, orders.ExtendedTables())

	users, _ := db.Table("users")
	assert.False(t, users.IsExtension())
}

func TestExtensionRequiresExactPrimaryKeys(t *testing.T) {
	db := schema.NewDatabase("test")

	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()
	parents.AddColumn("code", "INTEGER")

	// Host columns cover only part of the composite primary key.
	partial := db.AddTable("partial")
	partial.AddColumn("id", "INTEGER").SetPrimaryKey()
	partial.AddColumn("region", "INTEGER").SetPrimaryKey()
	_, err := partial.AddForeignKey("fk_partial", []string{"id"}, "parents", []string{"id"})
	require.NoError(t, err)
	assert.False(t, partial.IsExtension())

	// Referenced columns are not the referenced table's primary key.
	offkey := db.AddTable("offkey")
	offkey.AddColumn("id", "INTEGER").SetPrimaryKey()
	_, err = offkey.AddForeignKey("fk_offkey", []string{"id"}, "parents", []string{"code"})
	require.NoError(t, err)
	assert.False(t, offkey.IsExtension())
}

func TestReferencedTablesViaColumn(t *testing.T) {
	db := schema.NewDatabase("test")

	users := db.AddTable("users")
	users.AddColumn("id", "INTEGER").SetPrimaryKey()

	teams := db.AddTable("teams")
	teams.AddColumn("id", "INTEGER").SetPrimaryKey()
	teams.AddColumn("owner_id", "INTEGER")

	memberships := db.AddTable("memberships")
	memberships.AddColumn("user_id", "INTEGER").SetPrimaryKey()
	memberships.AddColumn("team_id", "INTEGER").SetPrimaryKey()
	_, err := memberships.AddForeignKey("fk_user", []string{"user_id"}, "users", []string{"id"})
	require.NoError(t, err)
	_, err = memberships.AddForeignKey("fk_team", []string{"team_id"}, "teams", []string{"id"})
	require.NoError(t, err)

	userID, _ := memberships.Column("user_id")
	assert.Equal(t, []string{"users"}, tableNames(memberships.ReferencedTablesViaColumn(userID)))

	teamID, _ := memberships.Column("team_id")
	assert.Equal(t, []string{"teams"}, tableNames(memberships.ReferencedTablesViaColumn(teamID)))

	ownerID, _ := teams.Column("owner_id")
	assert.Empty(t, teams.ReferencedTablesViaColumn(ownerID))
}

func TestUniqueIndicesIncludeImplicitPrimaryKey(t *testing.T) {
	db := schema.NewDatabase("test")
	users := db.AddTable("users")
	users.AddColumn("id", "INTEGER").SetPrimaryKey()
	users.AddColumn("email", "TEXT")
	_, err := users.AddIndex("users_email_idx", false, "email")
	require.NoError(t, err)
	_, err = users.AddIndex("users_email_key", true, "email")
	require.NoError(t, err)

	assert.Len(t, users.Indices(), 2, "implicit primary key index is not a declared index")

	unique := users.UniqueIndices()
	require.Len(t, unique, 2)
	assert.Equal(t, "users_email_key", unique[0].Name())
	assert.Equal(t, "users_pkey", unique[1].Name())
	assert.True(t, unique[1].IsUnique())
	assert.Equal(t, "id", unique[1].Expression())
}

func TestUniqueIndicesSkipImplicitWhenDeclared(t *testing.T) {
	db := schema.NewDatabase("test")
	users := db.AddTable("users")
	users.AddColumn("id", "INTEGER").SetPrimaryKey()
	_, err := users.AddIndex("users_id_key", true, "id")
	require.NoError(t, err)

	unique := users.UniqueIndices()
	require.Len(t, unique, 1)
	assert.Equal(t, "users_id_key", unique[0].Name())
}

func TestAddIndexUnknownColumn(t *testing.T) {
	db := buildShop(t)
	users, _ := db.Table("users")

	_, err := users.AddIndex("users_bad_idx", true, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "missing"`)
}

func TestChecksAttachToSingleReferencedColumn(t *testing.T) {
	db := schema.NewDatabase("test")
	products := db.AddTable("products")
	name := products.AddColumn("name", "TEXT")
	price := products.AddColumn("price", "NUMERIC")
	discount := products.AddColumn("discount", "NUMERIC")

	products.AddCheck("CHECK (length(name) > 0)")
	products.AddCheck("CHECK (price > 0)")
	products.AddCheck("CHECK (discount < price)")

	require.Len(t, products.CheckConstraints(), 3)

	nameChecks := name.CheckConstraints()
	require.Len(t, nameChecks, 1)
	assert.Equal(t, "length(name) > 0", nameChecks[0].Expression())
	assert.True(t, nameChecks[0].IsNotEmptyText())

	priceChecks := price.CheckConstraints()
	require.Len(t, priceChecks, 1)
	assert.Equal(t, "price > 0", priceChecks[0].Expression())

	assert.Empty(t, discount.CheckConstraints(), "two-column checks stay table-level")
}

func TestIsCompatibleWith(t *testing.T) {
	build := func(hostType string, hostGenerated bool, refColumn string) (lint.Column, lint.Column) {
		db := schema.NewDatabase("test")
		users := db.AddTable("users")
		users.AddColumn("id", "INTEGER").SetPrimaryKey().SetGenerated()
		users.AddColumn("nickname", "TEXT")

		orders := db.AddTable("orders")
		host := orders.AddColumn("user_id", hostType)
		if hostGenerated {
			host.SetGenerated()
		}
		_, err := orders.AddForeignKey("fk", []string{"user_id"}, "users", []string{refColumn})
		require.NoError(t, err)

		ref, _ := users.Column(refColumn)
		return host, ref
	}

	t.Run("foreign key onto primary key is compatible", func(t *testing.T) {
		host, ref := build("INTEGER", false, "id")
		assert.True(t, host.IsCompatibleWith(ref))
	})

	t.Run("normalized types still match", func(t *testing.T) {
		host, ref := build("INT4", false, "id")
		assert.True(t, host.IsCompatibleWith(ref))
	})

	t.Run("both generated", func(t *testing.T) {
		host, ref := build("INTEGER", true, "id")
		assert.False(t, host.IsCompatibleWith(ref))
	})

	t.Run("type mismatch", func(t *testing.T) {
		host, ref := build("TEXT", false, "id")
		assert.False(t, host.IsCompatibleWith(ref))
	})

	t.Run("disjoint hierarchies", func(t *testing.T) {
		host, ref := build("TEXT", false, "nickname")
		assert.False(t, host.IsCompatibleWith(ref), "referenced column belongs to no hierarchy")
	})
}

func TestCheckExpressionCanonicalized(t *testing.T) {
	db := schema.NewDatabase("test")
	items := db.AddTable("items")
	items.AddColumn("qty", "INTEGER")

	check := items.AddCheck("CHECK ((qty   >= 0))")
	assert.Equal(t, "qty >= 0", check.Expression())
}

func TestRowLevelSecurityAndPolicies(t *testing.T) {
	db := schema.NewDatabase("test")
	docs := db.AddTable("documents")
	assert.False(t, docs.HasRowLevelSecurity())
	assert.Empty(t, docs.Policies())

	docs.EnableRowLevelSecurity().AddPolicy("documents_owner")
	assert.True(t, docs.HasRowLevelSecurity())
	assert.Equal(t, []string{"documents_owner"}, docs.Policies())
}

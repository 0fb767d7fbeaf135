package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint/rules"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// diagnosticOf unwraps the diagnostic carried by a violation error.
func diagnosticOf(t *testing.T, err error) *lint.Diagnostic {
	t.Helper()
	require.Error(t, err)
	var v lint.Violation
	require.ErrorAs(t, err, &v)
	return v.Diagnostic()
}

// tableWithKey builds a single-table database whose table has an integer
// primary key named id.
func tableWithKey(name string) (*schema.Database, *schema.Table) {
	db := schema.NewDatabase("app")
	table := db.AddTable(name)
	table.AddColumn("id", "INTEGER").SetPrimaryKey()
	return db, table
}

// extend declares an extension foreign key, mapping child's primary key
// onto parent's primary key. Both tables must have an id primary key.
func extend(t *testing.T, child *schema.Table, parent string) *schema.ForeignKey {
	t.Helper()
	fk, err := child.AddForeignKey(child.Name()+"_"+parent+"_fkey", []string{"id"}, parent, []string{"id"})
	require.NoError(t, err)
	fk.SetOnDelete("CASCADE")
	return fk
}

func TestTB01_HasPrimaryKey(t *testing.T) {
	rule := rules.HasPrimaryKey{}

	db := schema.NewDatabase("app")
	users := db.AddTable("users")
	users.AddColumn("name", "TEXT")

	diag := diagnosticOf(t, rule.ValidateTable(db, users))
	assert.Equal(t, "HasPrimaryKey", diag.Rule())
	assert.Equal(t, "users", diag.Object())
	assert.Equal(t, "Table 'users' does not have a primary key", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Add a primary key column to table 'users'", resolution)

	db2, orders := tableWithKey("orders")
	assert.NoError(t, rule.ValidateTable(db2, orders))
}

func TestTB02_LowercaseTableName(t *testing.T) {
	rule := rules.LowercaseTableName{}

	tests := []struct {
		name     string
		wantDiag bool
	}{
		{name: "users", wantDiag: false},
		{name: "Users", wantDiag: true},
		{name: "user_Accounts", wantDiag: true},
		{name: "user_accounts2", wantDiag: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := tableWithKey(tt.name)
			err := rule.ValidateTable(db, table)
			if !tt.wantDiag {
				assert.NoError(t, err)
				return
			}
			diag := diagnosticOf(t, err)
			assert.Equal(t, "Table name '"+tt.name+"' is not lowercase", diag.Message())
		})
	}
}

func TestTB03_SnakeCaseTableName(t *testing.T) {
	rule := rules.SnakeCaseTableName{}

	tests := []struct {
		name     string
		issue    string
		expected string
	}{
		{name: "user_accounts"},
		{name: "user__accounts", issue: "contains double underscores", expected: "user_accounts"},
		{name: "UserAccounts", issue: "contains uppercase letters", expected: "user_accounts"},
		{name: "user accounts", issue: "does not follow snake_case convention", expected: "user_accounts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := tableWithKey(tt.name)
			err := rule.ValidateTable(db, table)
			if tt.issue == "" {
				assert.NoError(t, err)
				return
			}
			diag := diagnosticOf(t, err)
			assert.Equal(t, "Table '"+tt.name+"' violates snake_case naming convention: "+tt.issue, diag.Message())
			resolution, ok := diag.Resolution()
			require.True(t, ok)
			assert.Equal(t, "Change '"+tt.name+"' to '"+tt.expected+"' (use lowercase letters and single underscores only)", resolution)
		})
	}
}

func TestTB04_PluralTableName(t *testing.T) {
	rule := rules.PluralTableName{}

	tests := []struct {
		name     string
		segment  string
		expected string
	}{
		{name: "users"},
		{name: "user_accounts"},
		{name: "people"},
		{name: "user", segment: "user", expected: "users"},
		{name: "user_account", segment: "account", expected: "user_accounts"},
		{name: "person", segment: "person", expected: "people"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := tableWithKey(tt.name)
			err := rule.ValidateTable(db, table)
			if tt.segment == "" {
				assert.NoError(t, err)
				return
			}
			diag := diagnosticOf(t, err)
			assert.Equal(t,
				"Table '"+tt.name+"' violates plural naming convention: the last segment '"+tt.segment+"' is singular, not plural",
				diag.Message())
			resolution, ok := diag.Resolution()
			require.True(t, ok)
			assert.Contains(t, resolution, "'"+tt.expected+"'")
		})
	}
}

func TestTB05_NoReservedKeywordTableName(t *testing.T) {
	rule := rules.NoReservedKeywordTableName{}

	db, user := tableWithKey("user")
	diag := diagnosticOf(t, rule.ValidateTable(db, user))
	assert.Equal(t, "Table name 'user' is a reserved keyword.", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Rename the table 'user' to something that is not a reserved keyword.", resolution)

	db2, users := tableWithKey("users")
	assert.NoError(t, rule.ValidateTable(db2, users))

	custom := rules.NoReservedKeywordTableName{Keywords: []string{"forbidden"}}
	db3, forbidden := tableWithKey("Forbidden")
	assert.Error(t, custom.ValidateTable(db3, forbidden))
	db4, user2 := tableWithKey("user")
	assert.NoError(t, custom.ValidateTable(db4, user2))
}

func TestTB06_NoTautologicalCheck(t *testing.T) {
	rule := rules.NoTautologicalCheckRule{}

	tests := []struct {
		name      string
		check     string
		canonical string
	}{
		{name: "numeric equality", check: "1 = 1", canonical: "1 = 1"},
		{name: "column against itself", check: "CHECK (price = price)", canonical: "price = price"},
		{name: "literal true", check: "TRUE", canonical: "TRUE"},
		{name: "real constraint", check: "price > 0"},
		{name: "not empty", check: "name <> ''"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := tableWithKey("products")
			table.AddCheck(tt.check)
			err := rule.ValidateTable(db, table)
			if tt.canonical == "" {
				assert.NoError(t, err)
				return
			}
			diag := diagnosticOf(t, err)
			assert.Equal(t, "Table 'products' has a tautological check constraint: CHECK ("+tt.canonical+")", diag.Message())
		})
	}
}

func TestTB07_NoNegationCheck(t *testing.T) {
	rule := rules.NoNegationCheckRule{}

	tests := []struct {
		name      string
		check     string
		canonical string
	}{
		{name: "distinct numbers", check: "1 = 2", canonical: "1 = 2"},
		{name: "column against itself", check: "price <> price", canonical: "price <> price"},
		{name: "literal false", check: "FALSE", canonical: "FALSE"},
		{name: "real constraint", check: "price > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := tableWithKey("products")
			table.AddCheck(tt.check)
			err := rule.ValidateTable(db, table)
			if tt.canonical == "" {
				assert.NoError(t, err)
				return
			}
			diag := diagnosticOf(t, err)
			assert.Equal(t, "Table 'products' has a negation check constraint: CHECK ("+tt.canonical+")", diag.Message())
		})
	}
}

func TestTB08_NoForbiddenColumnInExtension(t *testing.T) {
	rule := rules.NoForbiddenColumnInExtension{ForbiddenName: "most_concrete_table"}

	db := schema.NewDatabase("app")
	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()

	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	children.AddColumn("most_concrete_table", "TEXT")
	extend(t, children, "parents")

	diag := diagnosticOf(t, rule.ValidateTable(db, children))
	assert.Equal(t, "Table 'children' extends table (parents) but has a forbidden column named 'most_concrete_table'", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Rename or remove the 'most_concrete_table' column from table 'children' (extension tables should not define this column)", resolution)

	// Non-extension tables may carry the column name.
	standalone := db.AddTable("standalones")
	standalone.AddColumn("id", "INTEGER").SetPrimaryKey()
	standalone.AddColumn("most_concrete_table", "TEXT")
	assert.NoError(t, rule.ValidateTable(db, standalone))
}

func TestTB08_ForbiddenColumnComparedCaseInsensitively(t *testing.T) {
	rule := rules.NoForbiddenColumnInExtension{ForbiddenName: "most_concrete_table"}

	db := schema.NewDatabase("app")
	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()
	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	children.AddColumn("Most_Concrete_Table", "TEXT")
	extend(t, children, "parents")

	assert.Error(t, rule.ValidateTable(db, children))
}

func TestTB09_NonRedundantExtensionDag(t *testing.T) {
	rule := rules.NonRedundantExtensionDag{}

	db := schema.NewDatabase("app")
	grandparents := db.AddTable("grandparents")
	grandparents.AddColumn("id", "INTEGER").SetPrimaryKey()
	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()
	extend(t, parents, "grandparents")

	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	extend(t, children, "parents")
	extend(t, children, "grandparents")

	assert.NoError(t, rule.ValidateTable(db, grandparents))
	assert.NoError(t, rule.ValidateTable(db, parents))

	diag := diagnosticOf(t, rule.ValidateTable(db, children))
	assert.Equal(t, "Table 'children' has a redundant extension: 'grandparents' is already reachable through 'parents'", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Remove the foreign key extending 'grandparents' from table 'children'", resolution)
}

func TestTB09_DiamondIsNotRedundant(t *testing.T) {
	rule := rules.NonRedundantExtensionDag{}

	// children extends two unrelated parents. No edge is redundant.
	db := schema.NewDatabase("app")
	mothers := db.AddTable("mothers")
	mothers.AddColumn("id", "INTEGER").SetPrimaryKey()
	fathers := db.AddTable("fathers")
	fathers.AddColumn("id", "INTEGER").SetPrimaryKey()
	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	extend(t, children, "mothers")
	extend(t, children, "fathers")

	assert.NoError(t, rule.ValidateTable(db, children))
}

func TestTB10_UniqueCheck(t *testing.T) {
	rule := rules.UniqueCheckRule{}

	db, products := tableWithKey("products")
	products.AddCheck("price > 0")
	products.AddCheck("discount >= 0")
	assert.NoError(t, rule.ValidateTable(db, products))

	products.AddCheck("price > 0")
	diag := diagnosticOf(t, rule.ValidateTable(db, products))
	assert.Equal(t, "UniqueCheckConstraint", diag.Rule())
	assert.Equal(t, "Table 'products' has non-unique check constraints", diag.Message())
}

func TestTB10_DetectionIsOrderInsensitive(t *testing.T) {
	rule := rules.UniqueCheckRule{}

	// The duplicate pair is separated by other constraints.
	db, products := tableWithKey("products")
	products.AddCheck("price > 0")
	products.AddCheck("a > 0")
	products.AddCheck("z > 0")
	products.AddCheck("price > 0")

	assert.Error(t, rule.ValidateTable(db, products))
}

func TestTB10_CanonicalFormsCollide(t *testing.T) {
	rule := rules.UniqueCheckRule{}

	// Same constraint spelled with different wrapping and spacing.
	db, products := tableWithKey("products")
	products.AddCheck("price   >   0")
	products.AddCheck("CHECK (price > 0)")

	assert.Error(t, rule.ValidateTable(db, products))
}

func TestTB11_UniqueColumnNamesInExtensionGraph(t *testing.T) {
	rule := rules.UniqueColumnNamesInExtensionGraph{}

	db := schema.NewDatabase("app")
	grandparents := db.AddTable("grandparents")
	grandparents.AddColumn("id", "INTEGER").SetPrimaryKey()
	grandparents.AddColumn("surname", "TEXT")

	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()
	parents.AddColumn("nickname", "TEXT")
	extend(t, parents, "grandparents")

	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	children.AddColumn("surname", "TEXT")
	extend(t, children, "parents")

	// parents redefines nothing, children redefines surname two levels up.
	assert.NoError(t, rule.ValidateTable(db, parents))
	diag := diagnosticOf(t, rule.ValidateTable(db, children))
	assert.Equal(t, "Table 'children' redefines column 'surname' which is already defined in extended table 'grandparents'", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Rename or remove the column 'surname' in table 'children' (it is inherited from 'grandparents' through the extension hierarchy)", resolution)
}

func TestTB11_PrimaryKeyColumnsAreExempt(t *testing.T) {
	rule := rules.UniqueColumnNamesInExtensionGraph{}

	// Extension tables always share the id column with their parents.
	db := schema.NewDatabase("app")
	parents := db.AddTable("parents")
	parents.AddColumn("id", "INTEGER").SetPrimaryKey()
	children := db.AddTable("children")
	children.AddColumn("id", "INTEGER").SetPrimaryKey()
	extend(t, children, "parents")

	assert.NoError(t, rule.ValidateTable(db, children))
}

func TestTB12_UniqueForeignKey(t *testing.T) {
	rule := rules.UniqueForeignKey{}

	db := schema.NewDatabase("app")
	users := db.AddTable("users")
	users.AddColumn("id", "INTEGER").SetPrimaryKey()

	orders := db.AddTable("orders")
	orders.AddColumn("id", "INTEGER").SetPrimaryKey()
	orders.AddColumn("user_id", "INTEGER")
	_, err := orders.AddForeignKey("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"})
	require.NoError(t, err)
	assert.NoError(t, rule.ValidateTable(db, orders))

	_, err = orders.AddForeignKey("orders_user_id_fkey2", []string{"user_id"}, "users", []string{"id"})
	require.NoError(t, err)

	diag := diagnosticOf(t, rule.ValidateTable(db, orders))
	assert.Equal(t, "Table 'orders' has 2 duplicate foreign key definitions:\n"+
		"  - FOREIGN KEY (user_id) REFERENCES users (id)\n"+
		"  - FOREIGN KEY (user_id) REFERENCES users (id)\n"+
		"Both foreign keys reference the same columns and target table", diag.Message())
	resolution, ok := diag.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Remove one of the duplicate foreign key constraints from table 'orders'. Keep only one: FOREIGN KEY (user_id) REFERENCES users (id)", resolution)
}

func TestTB12_ColumnOrderDistinguishesForeignKeys(t *testing.T) {
	rule := rules.UniqueForeignKey{}

	// Same column sets in a different order are distinct definitions.
	db := schema.NewDatabase("app")
	grids := db.AddTable("grids")
	grids.AddColumn("x", "INTEGER").SetPrimaryKey()
	grids.AddColumn("y", "INTEGER").SetPrimaryKey()

	cells := db.AddTable("cells")
	cells.AddColumn("id", "INTEGER").SetPrimaryKey()
	cells.AddColumn("x", "INTEGER")
	cells.AddColumn("y", "INTEGER")
	_, err := cells.AddForeignKey("cells_xy_fkey", []string{"x", "y"}, "grids", []string{"x", "y"})
	require.NoError(t, err)
	_, err = cells.AddForeignKey("cells_yx_fkey", []string{"y", "x"}, "grids", []string{"y", "x"})
	require.NoError(t, err)

	assert.NoError(t, rule.ValidateTable(db, cells))
}

func TestTB13_UniqueUniqueIndex(t *testing.T) {
	rule := rules.UniqueUniqueIndex{}

	db, users := tableWithKey("users")
	users.AddColumn("email", "TEXT")
	_, err := users.AddIndex("users_email_key", true, "email")
	require.NoError(t, err)
	assert.NoError(t, rule.ValidateTable(db, users))

	_, err = users.AddIndex("users_email_key2", true, "email")
	require.NoError(t, err)
	diag := diagnosticOf(t, rule.ValidateTable(db, users))
	assert.Equal(t, "Table 'users' has non-unique unique index on columns: email", diag.Message())
}

func TestTB13_DeclaredPrimaryKeyIndexDoesNotDouble(t *testing.T) {
	rule := rules.UniqueUniqueIndex{}

	// A declared unique index over the primary key replaces the implicit
	// one instead of duplicating it.
	db, users := tableWithKey("users")
	_, err := users.AddIndex("users_pkey", true, "id")
	require.NoError(t, err)

	assert.NoError(t, rule.ValidateTable(db, users))
}

func TestTB14_PoliciesRequireRowLevelSecurity(t *testing.T) {
	rule := rules.PoliciesRequireRowLevelSecurity{}

	db, users := tableWithKey("users")
	users.AddPolicy("users_select_own")
	diag := diagnosticOf(t, rule.ValidateTable(db, users))
	assert.Equal(t, "Table 'users' has policies but RLS is not enabled", diag.Message())

	users.EnableRowLevelSecurity()
	assert.NoError(t, rule.ValidateTable(db, users))

	db2, orders := tableWithKey("orders")
	assert.NoError(t, rule.ValidateTable(db2, orders))
}

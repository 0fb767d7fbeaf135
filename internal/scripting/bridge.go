package scripting

import (
	"go.starlark.net/starlark"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// tableValue converts a table to the dict handed to check_table functions.
// Nested tables appear as names, not dicts.
func tableValue(table lint.Table) starlark.Value {
	d := starlark.NewDict(9)
	_ = d.SetKey(starlark.String("name"), starlark.String(table.Name()))
	_ = d.SetKey(starlark.String("columns"), columnList(table.Columns()))
	_ = d.SetKey(starlark.String("primary_key"), stringList(columnNames(table.PrimaryKeyColumns())))
	_ = d.SetKey(starlark.String("foreign_keys"), foreignKeyList(table.ForeignKeys()))
	_ = d.SetKey(starlark.String("check_constraints"), stringList(checkExpressions(table.CheckConstraints())))
	_ = d.SetKey(starlark.String("is_extension"), starlark.Bool(table.IsExtension()))
	_ = d.SetKey(starlark.String("extended_tables"), stringList(tableNames(table.ExtendedTables())))
	_ = d.SetKey(starlark.String("has_row_level_security"), starlark.Bool(table.HasRowLevelSecurity()))
	_ = d.SetKey(starlark.String("policies"), stringList(table.Policies()))
	return d
}

// columnValue converts a column to the dict handed to check_column
// functions. The owning table appears as its name.
func columnValue(column lint.Column) starlark.Value {
	d := starlark.NewDict(8)
	_ = d.SetKey(starlark.String("name"), starlark.String(column.Name()))
	_ = d.SetKey(starlark.String("table"), starlark.String(column.Table().Name()))
	_ = d.SetKey(starlark.String("data_type"), starlark.String(column.NormalizedDataType()))
	_ = d.SetKey(starlark.String("is_primary_key"), starlark.Bool(column.IsPrimaryKey()))
	_ = d.SetKey(starlark.String("is_generated"), starlark.Bool(column.IsGenerated()))
	_ = d.SetKey(starlark.String("has_default"), starlark.Bool(column.HasDefault()))
	_ = d.SetKey(starlark.String("is_textual"), starlark.Bool(column.IsTextual()))
	_ = d.SetKey(starlark.String("check_constraints"), stringList(checkExpressions(column.CheckConstraints())))
	return d
}

// foreignKeyValue converts a foreign key to the dict handed to
// check_foreign_key functions.
func foreignKeyValue(fk lint.ForeignKey) starlark.Value {
	d := starlark.NewDict(6)
	_ = d.SetKey(starlark.String("name"), starlark.String(fk.Name()))
	_ = d.SetKey(starlark.String("host_table"), starlark.String(fk.HostTable().Name()))
	_ = d.SetKey(starlark.String("referenced_table"), starlark.String(fk.ReferencedTable().Name()))
	_ = d.SetKey(starlark.String("host_columns"), stringList(columnNames(fk.HostColumns())))
	_ = d.SetKey(starlark.String("referenced_columns"), stringList(columnNames(fk.ReferencedColumns())))
	_ = d.SetKey(starlark.String("on_delete"), starlark.String(fk.OnDelete()))
	return d
}

func columnList(columns []lint.Column) *starlark.List {
	values := make([]starlark.Value, len(columns))
	for i, column := range columns {
		values[i] = columnValue(column)
	}
	return starlark.NewList(values)
}

func foreignKeyList(fks []lint.ForeignKey) *starlark.List {
	values := make([]starlark.Value, len(fks))
	for i, fk := range fks {
		values[i] = foreignKeyValue(fk)
	}
	return starlark.NewList(values)
}

func stringList(items []string) *starlark.List {
	values := make([]starlark.Value, len(items))
	for i, item := range items {
		values[i] = starlark.String(item)
	}
	return starlark.NewList(values)
}

func columnNames(columns []lint.Column) []string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name()
	}
	return names
}

func tableNames(tables []lint.Table) []string {
	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name()
	}
	return names
}

func checkExpressions(checks []lint.CheckConstraint) []string {
	expressions := make([]string, len(checks))
	for i, check := range checks {
		expressions[i] = check.Expression()
	}
	return expressions
}

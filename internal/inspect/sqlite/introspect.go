package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// tableInfoRow is one PRAGMA table_info() row.
type tableInfoRow struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

// foreignKeyRow holds a row from PRAGMA foreign_key_list(). To is nil when
// the declaration references the target table's implicit primary key.
type foreignKeyRow struct {
	ID       int     `db:"id"`
	Seq      int     `db:"seq"`
	Table    string  `db:"table"`
	From     string  `db:"from"`
	To       *string `db:"to"`
	OnUpdate string  `db:"on_update"`
	OnDelete string  `db:"on_delete"`
	Match    string  `db:"match"`
}

// indexListRow is one PRAGMA index_list() row.
type indexListRow struct {
	Seq     int    `db:"seq"`
	Name    string `db:"name"`
	Unique  int    `db:"unique"`
	Origin  string `db:"origin"`
	Partial int    `db:"partial"`
}

// indexInfoRow holds a row from PRAGMA index_info(). Name is nil for
// expression members and the implicit rowid.
type indexInfoRow struct {
	SeqNo int     `db:"seqno"`
	CID   int     `db:"cid"`
	Name  *string `db:"name"`
}

// Schema introspects every user table into the lint model. Tables are
// loaded in name order; foreign keys are resolved in a second pass so
// references onto later tables work.
func (i *Inspector) Schema(ctx context.Context) (*schema.Database, error) {
	if i.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	const query = `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	var names []string
	if err := i.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	db := schema.NewDatabase("main")
	for _, name := range names {
		if err := i.introspectTable(ctx, db, name); err != nil {
			return nil, fmt.Errorf("introspect table %q: %w", name, err)
		}
	}
	for _, name := range names {
		if err := i.introspectForeignKeys(ctx, db, name); err != nil {
			return nil, fmt.Errorf("introspect foreign keys of %q: %w", name, err)
		}
	}
	return db, nil
}

// introspectTable loads one table's columns, check constraints, and
// declared indices.
func (i *Inspector) introspectTable(ctx context.Context, db *schema.Database, name string) error {
	pragma := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(name))
	var columns []tableInfoRow
	if err := i.db.SelectContext(ctx, &columns, pragma); err != nil {
		return fmt.Errorf("table_info: %w", err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %q not found", name)
	}

	createSQL, err := i.createStatement(ctx, name)
	if err != nil {
		return err
	}

	table := db.AddTable(name)
	keyCount := 0
	for _, col := range columns {
		if col.PK > 0 {
			keyCount++
		}
	}
	for _, col := range columns {
		column := table.AddColumn(col.Name, col.Type)
		if col.PK > 0 {
			column.SetPrimaryKey()
			// INTEGER PRIMARY KEY aliases the rowid, so the value is
			// auto-assigned; explicit AUTOINCREMENT requires that form.
			if keyCount == 1 && strings.Contains(strings.ToUpper(createSQL), "INTEGER PRIMARY KEY") {
				column.SetGenerated()
			}
		}
		if col.Default != nil {
			column.SetDefault()
		}
	}

	for _, expr := range extractChecks(createSQL) {
		table.AddCheck(expr)
	}

	return i.introspectIndices(ctx, table, name)
}

// introspectIndices loads the declared indices of one table. The implicit
// primary key index is skipped since the model derives it, and indices with
// expression members are skipped because the model indexes columns only.
func (i *Inspector) introspectIndices(ctx context.Context, table *schema.Table, name string) error {
	pragma := fmt.Sprintf("PRAGMA index_list(%s)", quoteIdentifier(name))
	var indices []indexListRow
	if err := i.db.SelectContext(ctx, &indices, pragma); err != nil {
		return fmt.Errorf("index_list: %w", err)
	}

	for _, idx := range indices {
		if idx.Origin == "pk" {
			continue
		}
		infoPragma := fmt.Sprintf("PRAGMA index_info(%s)", quoteIdentifier(idx.Name))
		var members []indexInfoRow
		if err := i.db.SelectContext(ctx, &members, infoPragma); err != nil {
			return fmt.Errorf("index_info for %q: %w", idx.Name, err)
		}
		sort.Slice(members, func(a, b int) bool { return members[a].SeqNo < members[b].SeqNo })

		columns := make([]string, 0, len(members))
		onExpression := false
		for _, member := range members {
			if member.Name == nil {
				onExpression = true
				break
			}
			columns = append(columns, *member.Name)
		}
		if onExpression {
			i.logger.Debug("skipping expression index", "index", idx.Name, "table", name)
			continue
		}
		if _, err := table.AddIndex(idx.Name, idx.Unique == 1, columns...); err != nil {
			return err
		}
	}
	return nil
}

// introspectForeignKeys loads the table's foreign keys. Pragma rows are
// grouped by constraint id with members in seq order; the pragma lists the
// most recently declared key first, so groups are walked in descending id
// order to recover declaration order.
func (i *Inspector) introspectForeignKeys(ctx context.Context, db *schema.Database, name string) error {
	table, ok := db.Table(name)
	if !ok {
		return fmt.Errorf("table %q not loaded", name)
	}

	pragma := fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdentifier(name))
	var rows []foreignKeyRow
	if err := i.db.SelectContext(ctx, &rows, pragma); err != nil {
		return fmt.Errorf("foreign_key_list: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	groups := make(map[int][]foreignKeyRow)
	ids := make([]int, 0)
	for _, row := range rows {
		if _, seen := groups[row.ID]; !seen {
			ids = append(ids, row.ID)
		}
		groups[row.ID] = append(groups[row.ID], row)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	for _, id := range ids {
		group := groups[id]
		sort.Slice(group, func(a, b int) bool { return group[a].Seq < group[b].Seq })

		hostColumns := make([]string, len(group))
		referencedColumns := make([]string, len(group))
		for n, row := range group {
			hostColumns[n] = row.From
			if row.To != nil {
				referencedColumns[n] = *row.To
				continue
			}
			// Short-form REFERENCES target: the referenced table's
			// primary key, positionally.
			referenced, found := db.Table(row.Table)
			if !found {
				return fmt.Errorf("foreign key references unknown table %q", row.Table)
			}
			key := referenced.PrimaryKeyColumns()
			if n >= len(key) {
				return fmt.Errorf("foreign key onto %q: implicit key has no column %d", row.Table, n)
			}
			referencedColumns[n] = key[n].Name()
		}

		// SQLite does not expose constraint names through the pragma.
		fk, err := table.AddForeignKey("", hostColumns, group[0].Table, referencedColumns)
		if err != nil {
			return err
		}
		fk.SetOnDelete(group[0].OnDelete)
	}
	return nil
}

// createStatement returns the CREATE TABLE text recorded in sqlite_master.
func (i *Inspector) createStatement(ctx context.Context, name string) (string, error) {
	const query = `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`
	var createSQL string
	if err := i.db.GetContext(ctx, &createSQL, query, name); err != nil {
		return "", fmt.Errorf("create statement for %q: %w", name, err)
	}
	return createSQL, nil
}

// extractChecks returns the CHECK expressions declared in a CREATE TABLE
// statement, outer parentheses stripped. The scan tracks single-quoted
// literals, double-quoted identifiers, and nested parentheses.
func extractChecks(createSQL string) []string {
	var checks []string
	inSingle, inDouble := false, false
	for pos := 0; pos < len(createSQL); pos++ {
		c := createSQL[pos]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case len(createSQL)-pos >= 5 && strings.EqualFold(createSQL[pos:pos+5], "CHECK") &&
			(pos == 0 || !isIdentByte(createSQL[pos-1])) &&
			(pos+5 == len(createSQL) || !isIdentByte(createSQL[pos+5])):
			open := pos + 5
			for open < len(createSQL) && isSpaceByte(createSQL[open]) {
				open++
			}
			if open >= len(createSQL) || createSQL[open] != '(' {
				continue
			}
			expr, end, ok := balancedParen(createSQL, open)
			if !ok {
				return checks
			}
			checks = append(checks, expr)
			pos = end
		}
	}
	return checks
}

// balancedParen scans from the opening parenthesis at open and returns the
// enclosed text and the index of the matching closing parenthesis.
func balancedParen(s string, open int) (string, int, bool) {
	depth := 0
	inSingle, inDouble := false, false
	for pos := open; pos < len(s); pos++ {
		switch {
		case inSingle:
			if s[pos] == '\'' {
				inSingle = false
			}
		case inDouble:
			if s[pos] == '"' {
				inDouble = false
			}
		case s[pos] == '\'':
			inSingle = true
		case s[pos] == '"':
			inDouble = true
		case s[pos] == '(':
			depth++
		case s[pos] == ')':
			depth--
			if depth == 0 {
				return s[open+1 : pos], pos, true
			}
		}
	}
	return "", 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// quoteIdentifier wraps an identifier in double quotes, escaping embedded
// quotes, so pragma arguments cannot break out.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

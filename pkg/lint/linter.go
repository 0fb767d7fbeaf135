package lint

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Linter applies rules to a schema. Rules run in registration order per
// entity kind; that order is the only sequencing guarantee. The zero value
// is usable: a Linter with no rules accepts every schema.
type Linter struct {
	tableRules      []TableRule
	columnRules     []ColumnRule
	foreignKeyRules []ForeignKeyRule
}

// New returns an empty Linter.
func New() *Linter {
	return &Linter{}
}

// NewLinter builds a Linter from arbitrary rule values. Each rule is
// dispatched to every collection matching the interfaces it implements, so a
// single argument yields a ready single-rule linter. A rule implementing no
// rule kind is a registration error.
func NewLinter(rules ...Rule) (*Linter, error) {
	l := New()
	for _, rule := range rules {
		matched := false
		if tr, ok := rule.(TableRule); ok {
			l.RegisterTableRule(tr)
			matched = true
		}
		if cr, ok := rule.(ColumnRule); ok {
			l.RegisterColumnRule(cr)
			matched = true
		}
		if fr, ok := rule.(ForeignKeyRule); ok {
			l.RegisterForeignKeyRule(fr)
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("rule %q implements no rule kind", rule.Name())
		}
	}
	return l, nil
}

// RegisterTableRule appends a table rule to the traversal.
func (l *Linter) RegisterTableRule(rule TableRule) {
	l.tableRules = append(l.tableRules, rule)
}

// RegisterColumnRule appends a column rule to the traversal.
func (l *Linter) RegisterColumnRule(rule ColumnRule) {
	l.columnRules = append(l.columnRules, rule)
}

// RegisterForeignKeyRule appends a foreign key rule to the traversal.
func (l *Linter) RegisterForeignKeyRule(rule ForeignKeyRule) {
	l.foreignKeyRules = append(l.foreignKeyRules, rule)
}

// TableRules returns the registered table rules in registration order.
func (l *Linter) TableRules() []TableRule { return l.tableRules }

// ColumnRules returns the registered column rules in registration order.
func (l *Linter) ColumnRules() []ColumnRule { return l.columnRules }

// ForeignKeyRules returns the registered foreign key rules in registration
// order.
func (l *Linter) ForeignKeyRules() []ForeignKeyRule { return l.foreignKeyRules }

// EncounterTable applies the table rules to one table, in order, and returns
// the first violation.
func (l *Linter) EncounterTable(db Database, table Table) error {
	for _, rule := range l.tableRules {
		if err := rule.ValidateTable(db, table); err != nil {
			return err
		}
	}
	return nil
}

// EncounterColumn applies the column rules to one column, in order, and
// returns the first violation.
func (l *Linter) EncounterColumn(db Database, column Column) error {
	for _, rule := range l.columnRules {
		if err := rule.ValidateColumn(db, column); err != nil {
			return err
		}
	}
	return nil
}

// EncounterForeignKey applies the foreign key rules to one key, in order,
// and returns the first violation.
func (l *Linter) EncounterForeignKey(db Database, fk ForeignKey) error {
	for _, rule := range l.foreignKeyRules {
		if err := rule.ValidateForeignKey(db, fk); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSchema validates the whole schema fail-fast. Tables are visited in
// declaration order; for each table the table rules run first, then the
// column rules per column in declaration order, then the foreign key rules
// per key in declaration order. The first violation aborts the pass. A
// schema with no tables passes.
func (l *Linter) ValidateSchema(db Database) error {
	for _, table := range db.Tables() {
		if err := l.EncounterTable(db, table); err != nil {
			return err
		}
		for _, column := range table.Columns() {
			if err := l.EncounterColumn(db, column); err != nil {
				return err
			}
		}
		for _, fk := range table.ForeignKeys() {
			if err := l.EncounterForeignKey(db, fk); err != nil {
				return err
			}
		}
	}
	return nil
}

// AnalyzeSchema validates the whole schema without short-circuiting. The
// traversal order matches ValidateSchema, but every rule runs and every
// violation is collected. An empty slice means the schema passes.
func (l *Linter) AnalyzeSchema(db Database) []error {
	var errs []error
	for _, table := range db.Tables() {
		errs = append(errs, l.analyzeTable(db, table)...)
	}
	return errs
}

// AnalyzeSchemaConcurrent is AnalyzeSchema fanned out per table. At most
// limit tables are validated at once; limit <= 0 means no limit. Violations
// come back in table declaration order, so the result is deterministic. The
// returned error is non-nil only when the context is canceled.
func (l *Linter) AnalyzeSchemaConcurrent(ctx context.Context, db Database, limit int) ([]error, error) {
	tables := db.Tables()
	results := make([][]error, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, table := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.analyzeTable(db, table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error
	for _, r := range results {
		errs = append(errs, r...)
	}
	return errs, nil
}

// analyzeTable runs every rule against one table and collects the failures.
// Rules see the full schema, so per-table granularity is safe.
func (l *Linter) analyzeTable(db Database, table Table) []error {
	var errs []error
	for _, rule := range l.tableRules {
		if err := rule.ValidateTable(db, table); err != nil {
			errs = append(errs, err)
		}
	}
	for _, column := range table.Columns() {
		for _, rule := range l.columnRules {
			if err := rule.ValidateColumn(db, column); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, fk := range table.ForeignKeys() {
		for _, rule := range l.foreignKeyRules {
			if err := rule.ValidateForeignKey(db, fk); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

package rules

import (
	"fmt"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(TextualColumnRule{})
}

// Length limits for textual columns. Indexed columns must stay within what
// index implementations handle well; everything else gets a generous bound
// before it starts looking like document storage.
const (
	indexedTextLimit = 255
	looseTextLimit   = 8192
)

// TextualColumnRule enforces content constraints on textual columns: each
// needs a not-empty check and an upper-bound length check. The smallest
// declared bound governs; its allowed maximum depends on whether the column
// appears in an index or the primary key.
type TextualColumnRule struct{}

// Name implements lint.Rule.
func (TextualColumnRule) Name() string { return "TextualColumnRule" }

// Description implements lint.Rule.
func (TextualColumnRule) Description() string {
	return "Textual columns need content and length check constraints"
}

// ValidateColumn implements lint.ColumnRule.
func (r TextualColumnRule) ValidateColumn(_ lint.Database, column lint.Column) error {
	if !column.IsTextual() {
		return nil
	}

	checks := column.CheckConstraints()

	hasNotEmpty := false
	for _, check := range checks {
		if check.IsNotEmptyText() {
			hasNotEmpty = true
			break
		}
	}
	if !hasNotEmpty {
		return columnViolation(r.Name(), column,
			fmt.Sprintf("Textual column '%s' must have a check constraint verifying it is not empty.", column.Name()),
			"Add a check constraint verifying the column is not empty (e.g. `CHECK (col <> '')`).",
		)
	}

	limit, bounded := 0, false
	for _, check := range checks {
		if n, ok := check.UpperBoundTextLimit(); ok && (!bounded || n < limit) {
			limit, bounded = n, true
		}
	}
	if !bounded {
		return columnViolation(r.Name(), column,
			fmt.Sprintf("Textual column '%s' must have an upper bound length check constraint.", column.Name()),
			"Add a length check constraint (e.g. `CHECK (LENGTH(col) <= 255)`).",
		)
	}

	if r.isIndexed(column) {
		if limit > indexedTextLimit {
			return columnViolation(r.Name(), column,
				fmt.Sprintf("Textual column '%s' appears in an index but has length limit %d which is greater than %d.",
					column.Name(), limit, indexedTextLimit),
				"Reduce the length limit to 255 or less, or remove the column from the index.",
			)
		}
		return nil
	}
	if limit > looseTextLimit {
		return columnViolation(r.Name(), column,
			fmt.Sprintf("Textual column '%s' has length limit %d which is greater than %d (8K). This column likely stores a document.",
				column.Name(), limit, looseTextLimit),
			"If you intend to store large text documents, this might be better suited for a document store or Blob storage. Consider reducing the size if not necessary.",
		)
	}
	return nil
}

// isIndexed reports whether the column appears in any index on its table or
// in the primary key.
func (TextualColumnRule) isIndexed(column lint.Column) bool {
	if column.IsPrimaryKey() {
		return true
	}
	for _, index := range column.Table().Indices() {
		for _, indexed := range index.Columns() {
			if indexed.Name() == column.Name() {
				return true
			}
		}
	}
	return false
}

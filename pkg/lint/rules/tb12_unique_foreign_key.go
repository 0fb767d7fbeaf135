package rules

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func init() {
	lint.Register(UniqueForeignKey{})
}

// UniqueForeignKey flags tables declaring two foreign keys with the same
// signature: the same host columns, referenced table, and referenced
// columns. Signatures hash columns in declaration order, so two keys over
// the same column set in a different order count as distinct.
type UniqueForeignKey struct{}

// Name implements lint.Rule.
func (UniqueForeignKey) Name() string { return "UniqueForeignKey" }

// Description implements lint.Rule.
func (UniqueForeignKey) Description() string {
	return "Foreign key definitions must be unique within a table"
}

// ValidateTable implements lint.TableRule.
func (r UniqueForeignKey) ValidateTable(_ lint.Database, table lint.Table) error {
	keys := table.ForeignKeys()
	type signedKey struct {
		signature uint64
		fk        lint.ForeignKey
	}
	signed := make([]signedKey, len(keys))
	for i, fk := range keys {
		signed[i] = signedKey{signature: foreignKeySignature(fk), fk: fk}
	}
	sort.SliceStable(signed, func(i, j int) bool {
		return signed[i].signature < signed[j].signature
	})

	var duplicates []lint.ForeignKey
	for i := 1; i < len(signed); i++ {
		if signed[i-1].signature == signed[i].signature {
			duplicates = append(duplicates, signed[i-1].fk, signed[i].fk)
			break
		}
	}
	if len(duplicates) == 0 {
		return nil
	}

	details := make([]string, len(duplicates))
	for i, fk := range duplicates {
		details[i] = foreignKeyClause(fk)
	}
	return tableViolation(r.Name(), table,
		fmt.Sprintf("Table '%s' has %d duplicate foreign key definitions:\n  - %s\nBoth foreign keys reference the same columns and target table",
			table.Name(), len(duplicates), strings.Join(details, "\n  - ")),
		fmt.Sprintf("Remove one of the duplicate foreign key constraints from table '%s'. Keep only one: %s",
			table.Name(), details[0]),
	)
}

// foreignKeySignature hashes a foreign key's host columns, referenced table,
// and referenced columns. Every component is written length-delimited so
// ("ab","c") and ("a","bc") cannot collide.
func foreignKeySignature(fk lint.ForeignKey) uint64 {
	h := fnv.New64a()
	write := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(s))
	}
	for _, column := range fk.HostColumns() {
		write(column.Name())
	}
	write(fk.ReferencedTable().Name())
	for _, column := range fk.ReferencedColumns() {
		write(column.Name())
	}
	return h.Sum64()
}

// foreignKeyClause renders a foreign key as its declaration clause, e.g.
// "FOREIGN KEY (user_id) REFERENCES users (id)".
func foreignKeyClause(fk lint.ForeignKey) string {
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
		strings.Join(columnNames(fk.HostColumns()), ", "),
		fk.ReferencedTable().Name(),
		strings.Join(columnNames(fk.ReferencedColumns()), ", "))
}

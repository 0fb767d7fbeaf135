package rules

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// isLowercase reports whether the name contains no uppercase letters.
// Non-alphabetic runes are ignored.
func isLowercase(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// expectedSnakeCase returns the snake_case form of a name.
func expectedSnakeCase(name string) string {
	return strcase.ToSnake(name)
}

// snakeCaseIssue names what keeps a name from being snake_case. Callers
// only invoke it for names that differ from their snake_case form.
func snakeCaseIssue(name string) string {
	switch {
	case strings.Contains(name, "__"):
		return "contains double underscores"
	case strings.ContainsFunc(name, unicode.IsUpper):
		return "contains uppercase letters"
	default:
		return "does not follow snake_case convention"
	}
}

// splitLastSegment splits a name at its final underscore. The prefix is
// empty for single-segment names.
func splitLastSegment(name string) (prefix, segment string) {
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// joinSegment rebuilds a name from splitLastSegment parts with a replaced
// last segment.
func joinSegment(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "_" + segment
}

// columnNames extracts the names of the given columns in order.
func columnNames(columns []lint.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	return names
}

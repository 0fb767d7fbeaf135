package schema

import (
	"strconv"
	"strings"
)

// Canonical normalizes a check expression for storage and comparison. The
// CHECK keyword and outer parentheses are stripped and whitespace runs
// collapse to single spaces; case is preserved.
func Canonical(expression string) string {
	expr := strings.TrimSpace(expression)
	if len(expr) > 5 && strings.EqualFold(expr[:5], "check") {
		switch expr[5] {
		case ' ', '\t', '\n', '(':
			expr = strings.TrimSpace(expr[5:])
		}
	}
	for isWrapped(expr) {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return strings.Join(strings.Fields(expr), " ")
}

// isWrapped reports whether the whole expression sits inside one pair of
// balanced parentheses.
func isWrapped(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// normalize lower-cases and collapses whitespace for predicate matching.
func normalize(expression string) string {
	return strings.ToLower(strings.Join(strings.Fields(expression), " "))
}

// splitComparison splits an expression at its first top-level comparison
// operator. Operators inside parentheses or string literals do not count.
func splitComparison(expr string) (left, op, right string, ok bool) {
	depth := 0
	inQuote := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0:
			var candidate string
			if i+1 < len(expr) {
				switch expr[i : i+2] {
				case ">=", "<=", "<>", "!=":
					candidate = expr[i : i+2]
				}
			}
			if candidate == "" && (c == '=' || c == '<' || c == '>') {
				candidate = string(c)
			}
			if candidate != "" {
				left = strings.TrimSpace(expr[:i])
				right = strings.TrimSpace(expr[i+len(candidate):])
				return left, candidate, right, left != "" && right != ""
			}
		}
	}
	return "", "", "", false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// lengthArg returns the argument of a length-style call such as
// length(name) or char_length(name).
func lengthArg(s string) (string, bool) {
	for _, fn := range []string{"length", "char_length", "character_length"} {
		if strings.HasPrefix(s, fn+"(") && strings.HasSuffix(s, ")") {
			return strings.TrimSpace(s[len(fn)+1 : len(s)-1]), true
		}
	}
	return "", false
}

// IsTautology reports whether the expression is always true, e.g. TRUE,
// 1 = 1, or id = id.
func IsTautology(expression string) bool {
	expr := normalize(expression)
	if expr == "true" {
		return true
	}
	left, op, right, ok := splitComparison(expr)
	if !ok {
		return false
	}
	switch op {
	case "=", ">=", "<=":
		return left == right
	}
	return false
}

// IsNegation reports whether the expression is always false, e.g. FALSE,
// 1 = 0, or id <> id.
func IsNegation(expression string) bool {
	expr := normalize(expression)
	if expr == "false" {
		return true
	}
	left, op, right, ok := splitComparison(expr)
	if !ok {
		return false
	}
	switch op {
	case "<>", "!=", "<", ">":
		return left == right
	case "=":
		return isNumber(left) && isNumber(right) && left != right
	}
	return false
}

// IsNotEmptyText reports whether the expression requires a textual value to
// be non-empty, e.g. name <> '', trim(name) != '', or length(name) > 0.
func IsNotEmptyText(expression string) bool {
	expr := normalize(expression)
	left, op, right, ok := splitComparison(expr)
	if !ok {
		return false
	}
	switch op {
	case "<>", "!=":
		return right == "''" || left == "''"
	case ">":
		if _, isLen := lengthArg(left); isLen {
			return right == "0"
		}
	case ">=":
		if _, isLen := lengthArg(left); isLen {
			return right == "1"
		}
	}
	return false
}

// UpperBoundTextLimit returns the inclusive upper bound the expression puts
// on a value's length: length(name) <= 255 yields 255, length(name) < 256
// yields 255.
func UpperBoundTextLimit(expression string) (int, bool) {
	expr := normalize(expression)
	left, op, right, ok := splitComparison(expr)
	if !ok {
		return 0, false
	}
	if _, isLen := lengthArg(right); isLen {
		left, right = right, left
		op = flipComparison(op)
	}
	if _, isLen := lengthArg(left); !isLen {
		return 0, false
	}
	n, err := strconv.Atoi(right)
	if err != nil {
		return 0, false
	}
	switch op {
	case "<=":
		return n, true
	case "<":
		return n - 1, true
	}
	return 0, false
}

func flipComparison(op string) string {
	switch op {
	case "<":
		return ">"
	case ">":
		return "<"
	case "<=":
		return ">="
	case ">=":
		return "<="
	}
	return op
}

// exprKeywords are the SQL words and functions ReferencedColumns skips when
// collecting identifiers.
var exprKeywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "null": {},
	"true": {}, "false": {}, "like": {}, "ilike": {}, "between": {},
	"case": {}, "when": {}, "then": {}, "else": {}, "end": {},
	"exists": {}, "any": {}, "all": {}, "distinct": {},
	"length": {}, "char_length": {}, "character_length": {},
	"trim": {}, "btrim": {}, "ltrim": {}, "rtrim": {},
	"lower": {}, "upper": {}, "abs": {}, "coalesce": {}, "nullif": {},
	"now": {}, "current_timestamp": {}, "current_date": {}, "current_time": {},
	"localtimestamp": {}, "interval": {}, "extract": {}, "date_part": {},
	"cast": {}, "substring": {}, "position": {},
}

// ReferencedColumns returns the identifiers a check expression mentions,
// keywords and function names excluded, in first-appearance order. An
// expression mentioning exactly one identifier is attached to that column
// when the constraint is added to a table.
func ReferencedColumns(expression string) []string {
	expr := strings.ToLower(expression)
	var cols []string
	seen := make(map[string]struct{})
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '\'':
			j := i + 1
			for j < len(expr) && expr[j] != '\'' {
				j++
			}
			i = j + 1
		case isIdentStart(c):
			j := i + 1
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}
			word := expr[i:j]
			i = j
			if _, keyword := exprKeywords[word]; keyword {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			cols = append(cols, word)
		default:
			i++
		}
	}
	return cols
}

func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') }

func isIdentPart(c byte) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }

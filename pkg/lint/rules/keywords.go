package rules

import "strings"

// defaultReservedKeywords is the reserved-word list the keyword rules fall
// back to when not configured. It is the SQL reserved keyword set, which
// catches the classic mistakes such as naming a table "user" or "order".
var defaultReservedKeywords = []string{
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
	"asymmetric", "both", "case", "cast", "check", "collate", "column",
	"constraint", "create", "current_catalog", "current_date",
	"current_role", "current_time", "current_timestamp", "current_user",
	"default", "deferrable", "desc", "distinct", "do", "else", "end",
	"except", "false", "fetch", "for", "foreign", "from", "grant", "group",
	"having", "in", "initially", "intersect", "into", "lateral", "leading",
	"limit", "localtime", "localtimestamp", "not", "null", "offset", "on",
	"only", "or", "order", "placing", "primary", "references", "returning",
	"select", "session_user", "some", "symmetric", "table", "then", "to",
	"trailing", "true", "union", "unique", "user", "using", "variadic",
	"verbose", "when", "where", "window", "with",
}

// DefaultReservedKeywords returns a copy of the built-in reserved-word list.
func DefaultReservedKeywords() []string {
	return append([]string(nil), defaultReservedKeywords...)
}

// isReservedKeyword reports whether name appears in the keyword list,
// compared case-insensitively. An empty list means the default list.
func isReservedKeyword(name string, keywords []string) bool {
	if len(keywords) == 0 {
		keywords = defaultReservedKeywords
	}
	for _, keyword := range keywords {
		if strings.EqualFold(name, keyword) {
			return true
		}
	}
	return false
}

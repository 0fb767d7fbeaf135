package schema

import (
	"strconv"
	"strings"
)

// typeFamilies maps an upper-cased base type, precision stripped, to its
// canonical family.
var typeFamilies = map[string]string{
	"SMALLINT":    "smallint",
	"INT2":        "smallint",
	"SMALLSERIAL": "smallint",
	"INT":         "integer",
	"INTEGER":     "integer",
	"INT4":        "integer",
	"MEDIUMINT":   "integer",
	"SERIAL":      "integer",
	"BIGINT":      "bigint",
	"INT8":        "bigint",
	"BIGSERIAL":   "bigint",

	"REAL":             "real",
	"FLOAT4":           "real",
	"FLOAT":            "double precision",
	"FLOAT8":           "double precision",
	"DOUBLE":           "double precision",
	"DOUBLE PRECISION": "double precision",
	"NUMERIC":          "numeric",
	"DECIMAL":          "numeric",

	"TEXT":              "text",
	"VARCHAR":           "text",
	"CHARACTER VARYING": "text",
	"CHAR":              "text",
	"CHARACTER":         "text",
	"NCHAR":             "text",
	"NVARCHAR":          "text",
	"CLOB":              "text",
	"CITEXT":            "text",

	"BOOL":    "boolean",
	"BOOLEAN": "boolean",

	"TIMESTAMP":                   "timestamp",
	"TIMESTAMPTZ":                 "timestamp",
	"TIMESTAMP WITH TIME ZONE":    "timestamp",
	"TIMESTAMP WITHOUT TIME ZONE": "timestamp",
	"DATETIME":                    "timestamp",
	"DATE":                        "date",
	"TIME":                        "time",
	"TIMETZ":                      "time",
	"TIME WITH TIME ZONE":         "time",
	"TIME WITHOUT TIME ZONE":      "time",

	"UUID":      "uuid",
	"JSON":      "json",
	"JSONB":     "jsonb",
	"BYTEA":     "bytea",
	"BLOB":      "bytea",
	"BINARY":    "bytea",
	"VARBINARY": "bytea",
}

// NormalizeDataType maps a declared SQL data type to its canonical family,
// e.g. INT4, INTEGER, and SERIAL all normalize to "integer", and
// VARCHAR(255) normalizes to "text". Unknown types normalize to their
// lower-cased base form.
func NormalizeDataType(dataType string) string {
	base := strings.ToUpper(strings.TrimSpace(dataType))
	base, _ = splitTypeLength(base)
	base = strings.Join(strings.Fields(base), " ")
	if family, ok := typeFamilies[base]; ok {
		return family
	}
	return strings.ToLower(base)
}

// IsTextualType reports whether the declared type stores character data.
func IsTextualType(dataType string) bool {
	return NormalizeDataType(dataType) == "text"
}

// TypeLength extracts the declared length from types like VARCHAR(255) or
// CHAR(16). It reports false for types without a single numeric length.
func TypeLength(dataType string) (int, bool) {
	_, spec := splitTypeLength(strings.TrimSpace(dataType))
	if spec == "" || strings.Contains(spec, ",") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitTypeLength splits "VARCHAR(255)" into "VARCHAR" and "255". Types
// without parentheses come back with an empty spec.
func splitTypeLength(dataType string) (base, spec string) {
	open := strings.IndexByte(dataType, '(')
	if open < 0 {
		return dataType, ""
	}
	close := strings.LastIndexByte(dataType, ')')
	if close < open {
		return dataType, ""
	}
	base = strings.TrimSpace(dataType[:open])
	// Keep trailing modifiers such as "with time zone".
	if tail := strings.TrimSpace(dataType[close+1:]); tail != "" {
		base = base + " " + tail
	}
	return base, dataType[open+1 : close]
}

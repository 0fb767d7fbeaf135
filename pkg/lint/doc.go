// Package lint provides a capability-based schema linting engine.
//
// # Architecture
//
// The package is built around three pieces:
//
//  1. Entity contract (contract.go): small capability interfaces (Database,
//     Table, Column, ForeignKey, CheckConstraint, Index) that any schema
//     model can implement. The engine only ever reads through these
//     interfaces, so introspected databases, parsed DDL, and synthetic test
//     models are all equally valid inputs.
//  2. Rules (rule.go): a rule is a named check over one entity kind.
//     TableRule, ColumnRule, and ForeignKeyRule embed the Rule metadata
//     interface and add a single Validate method. Rules return nil on pass
//     and a typed violation error on failure.
//  3. Linter (linter.go): an ordered collection of rules per entity kind
//     with a deterministic traversal. ValidateSchema walks tables in
//     declaration order, applying table rules, then column rules per column,
//     then foreign key rules per key, and stops at the first violation.
//
// # Rule Registration
//
// Bundled rules register themselves with the global discovery registry via
// init() when their package is imported:
//
//	import _ "github.com/earth-metabolome-initiative/sql-rules/pkg/lint/rules"
//
// The registry serves discovery surfaces (the rules command, configuration
// validation, the HTTP catalogue). Linter instances are independent of it:
// a Linter applies exactly the rules registered on it, in order.
//
// # Building a Linter
//
// Compose a linter by hand:
//
//	linter := lint.New()
//	linter.RegisterTableRule(rules.HasPrimaryKey{})
//	linter.RegisterColumnRule(rules.LowercaseColumnName{})
//
// or convert any set of rule values, each dispatched by the interfaces it
// implements:
//
//	linter, err := lint.NewLinter(rules.Default()...)
//
// # Validation Modes
//
// ValidateSchema is fail-fast and returns the first violation. AnalyzeSchema
// collects every violation in traversal order. AnalyzeSchemaConcurrent is
// the collecting mode fanned out per table.
//
// # Violations
//
// Rule failures are typed errors carrying the offending entity and a
// Diagnostic (rule, object, message, optional resolution). Callers branch
// with errors.As:
//
//	var tv *lint.TableViolation
//	if errors.As(err, &tv) {
//		fmt.Println(tv.Info)
//	}
package lint

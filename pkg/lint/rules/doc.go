// Package rules contains the relational schema lint rules.
//
// Rules are organized by file prefix to indicate the entity they validate:
//
//   - tb*.go: table rules (naming, keys, check constraints, extension graph)
//   - cl*.go: column rules (naming, primary keys, textual content)
//   - fk*.go: foreign key rules (compatibility, uniqueness coverage)
//
// Importing the package registers every rule with the discovery registry:
//
//	import _ "github.com/earth-metabolome-initiative/sql-rules/pkg/lint/rules"
//
// Default returns the canonical ordered bundle and NewDefaultLinter builds a
// ready-to-use linter from it. A few rules are registered for discovery but
// stay out of the default bundle; they are opt-in via configuration.
package rules

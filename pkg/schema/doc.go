// Package schema is an in-memory relational schema model.
//
// The model implements the capability interfaces in pkg/lint, so a
// *Database built here (by hand, from introspection, or from executed DDL)
// can be handed straight to a Linter. Entities are linked: adding a column,
// check constraint, foreign key, or index to a table maintains the
// back-references the lint contract exposes.
//
// Extension relationships are derived, never declared. A foreign key whose
// host columns are exactly the host table's primary key and whose referenced
// columns are exactly the referenced table's primary key is an extension
// edge; IsExtension and ExtendedTables follow from those edges.
package schema

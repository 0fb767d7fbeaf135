package scripting

import (
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// scriptRule is the shared core of every scripted rule: the compiled check
// function plus the metadata the registry and renderers need.
type scriptRule struct {
	name        string
	description string
	fn          *starlark.Function
	logger      *slog.Logger
}

func (r scriptRule) Name() string { return r.name }

func (r scriptRule) Description() string { return r.description }

// verdict is a failed check as reported by a script. Object and resolution
// are optional.
type verdict struct {
	message    string
	object     string
	resolution string
}

// run calls the check function on a fresh thread and interprets its return
// value. A nil verdict with nil error means the entity passed.
func (r scriptRule) run(arg starlark.Value) (*verdict, error) {
	thread := &starlark.Thread{
		Name: r.name,
		Print: func(_ *starlark.Thread, msg string) {
			r.logger.Debug("script print", "rule", r.name, "message", msg)
		},
	}

	value, err := starlark.Call(thread, r.fn, starlark.Tuple{arg}, nil)
	if err != nil {
		return nil, fmt.Errorf("script error: %v", err)
	}
	return interpret(value)
}

// diagnostic assembles the violation diagnostic for a verdict.
func (r scriptRule) diagnostic(v *verdict) (*lint.Diagnostic, error) {
	b := lint.NewDiagnostic().Rule(r.name).Object(v.object).Message(v.message)
	if v.resolution != "" {
		b = b.Resolution(v.resolution)
	}
	return b.Build()
}

// interpret maps a script return value onto a verdict: None passes, a
// string is the violation message, and a dict carries message plus optional
// object and resolution.
func interpret(value starlark.Value) (*verdict, error) {
	switch v := value.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return &verdict{message: string(v)}, nil
	case *starlark.Dict:
		message, err := dictField(v, "message")
		if err != nil {
			return nil, err
		}
		if message == "" {
			return nil, fmt.Errorf("verdict dict has no 'message'")
		}
		object, err := dictField(v, "object")
		if err != nil {
			return nil, err
		}
		resolution, err := dictField(v, "resolution")
		if err != nil {
			return nil, err
		}
		return &verdict{message: message, object: object, resolution: resolution}, nil
	default:
		return nil, fmt.Errorf("script returned %s, want None, string, or dict", value.Type())
	}
}

// dictField reads an optional string field from a verdict dict.
func dictField(d *starlark.Dict, key string) (string, error) {
	value, found, err := d.Get(starlark.String(key))
	if err != nil || !found {
		return "", err
	}
	s, ok := starlark.AsString(value)
	if !ok {
		return "", fmt.Errorf("verdict field %q must be a string, got %s", key, value.Type())
	}
	return s, nil
}

// TableRule is a scripted rule validating tables.
type TableRule struct {
	scriptRule
}

// ValidateTable runs the script against one table.
func (r TableRule) ValidateTable(_ lint.Database, table lint.Table) error {
	v, err := r.run(tableValue(table))
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	if v == nil {
		return nil
	}
	if v.object == "" {
		v.object = table.Name()
	}
	info, err := r.diagnostic(v)
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	return &lint.TableViolation{Table: table, Info: info}
}

// ColumnRule is a scripted rule validating columns.
type ColumnRule struct {
	scriptRule
}

// ValidateColumn runs the script against one column.
func (r ColumnRule) ValidateColumn(_ lint.Database, column lint.Column) error {
	v, err := r.run(columnValue(column))
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	if v == nil {
		return nil
	}
	if v.object == "" {
		v.object = column.Table().Name() + "." + column.Name()
	}
	info, err := r.diagnostic(v)
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	return &lint.ColumnViolation{Column: column, Info: info}
}

// ForeignKeyRule is a scripted rule validating foreign keys.
type ForeignKeyRule struct {
	scriptRule
}

// ValidateForeignKey runs the script against one foreign key.
func (r ForeignKeyRule) ValidateForeignKey(_ lint.Database, fk lint.ForeignKey) error {
	v, err := r.run(foreignKeyValue(fk))
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	if v == nil {
		return nil
	}
	if v.object == "" {
		v.object = fk.Name()
		if v.object == "" {
			v.object = "Unnamed foreign key"
		}
	}
	info, err := r.diagnostic(v)
	if err != nil {
		return &lint.UnapplicableRule{Rule: r.name, Message: err.Error()}
	}
	return &lint.ForeignKeyViolation{ForeignKey: fk, Info: info}
}

var (
	_ lint.TableRule      = TableRule{}
	_ lint.ColumnRule     = ColumnRule{}
	_ lint.ForeignKeyRule = ForeignKeyRule{}
)

package lint

import (
	"encoding/json"
	"errors"
	"strings"
)

// Builder validation errors. Setters reject empty or whitespace-only input
// with the sentinel matching the attribute.
var (
	ErrEmptyRule       = errors.New("attribute 'rule' cannot be empty")
	ErrEmptyObject     = errors.New("attribute 'object' cannot be empty")
	ErrEmptyMessage    = errors.New("attribute 'message' cannot be empty")
	ErrEmptyResolution = errors.New("attribute 'resolution' cannot be empty")
)

// MissingAttributeError reports a required diagnostic attribute that was
// never set before Build.
type MissingAttributeError struct {
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return "missing attribute: " + e.Attribute
}

// Diagnostic describes a single rule violation: which rule fired, the object
// it fired on, what is wrong, and optionally how to fix it. Diagnostics are
// immutable once built.
type Diagnostic struct {
	rule       string
	object     string
	message    string
	resolution string
}

// Rule returns the name of the rule that produced the diagnostic.
func (d *Diagnostic) Rule() string { return d.rule }

// Object returns the schema object the diagnostic is about, e.g. "users" or
// "users.id".
func (d *Diagnostic) Object() string { return d.object }

// Message returns the violation message.
func (d *Diagnostic) Message() string { return d.message }

// Resolution returns the suggested fix, if one was provided.
func (d *Diagnostic) Resolution() (string, bool) {
	return d.resolution, d.resolution != ""
}

// String renders the diagnostic in its fixed multi-line layout. The
// resolution line is omitted when no resolution was set.
func (d *Diagnostic) String() string {
	var b strings.Builder
	b.WriteString("Rule: ")
	b.WriteString(d.rule)
	b.WriteString("\nObject: ")
	b.WriteString(d.object)
	b.WriteString("\nMessage: ")
	b.WriteString(d.message)
	if d.resolution != "" {
		b.WriteString("\nResolution: ")
		b.WriteString(d.resolution)
	}
	return b.String()
}

type diagnosticJSON struct {
	Rule       string `json:"rule"`
	Object     string `json:"object"`
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
}

// MarshalJSON emits the diagnostic as a flat object, omitting the resolution
// when unset.
func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(diagnosticJSON{
		Rule:       d.rule,
		Object:     d.object,
		Message:    d.message,
		Resolution: d.resolution,
	})
}

// DiagnosticBuilder assembles a Diagnostic. Each setter validates its input
// and records the first failure; Build surfaces it. Setting an attribute
// twice overwrites the earlier value.
type DiagnosticBuilder struct {
	d   Diagnostic
	err error
}

// NewDiagnostic returns an empty diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{}
}

// Rule sets the diagnostic's rule name.
func (b *DiagnosticBuilder) Rule(rule string) *DiagnosticBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(rule) == "" {
		b.err = ErrEmptyRule
		return b
	}
	b.d.rule = rule
	return b
}

// Object sets the schema object the diagnostic is about.
func (b *DiagnosticBuilder) Object(object string) *DiagnosticBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(object) == "" {
		b.err = ErrEmptyObject
		return b
	}
	b.d.object = object
	return b
}

// Message sets the violation message.
func (b *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(message) == "" {
		b.err = ErrEmptyMessage
		return b
	}
	b.d.message = message
	return b
}

// Resolution sets the suggested fix.
func (b *DiagnosticBuilder) Resolution(resolution string) *DiagnosticBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(resolution) == "" {
		b.err = ErrEmptyResolution
		return b
	}
	b.d.resolution = resolution
	return b
}

// Build returns the finished diagnostic. It fails with the first setter
// error, or with a *MissingAttributeError when rule, object, or message was
// never set. Resolution stays optional.
func (b *DiagnosticBuilder) Build() (*Diagnostic, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch {
	case b.d.rule == "":
		return nil, &MissingAttributeError{Attribute: "rule"}
	case b.d.object == "":
		return nil, &MissingAttributeError{Attribute: "object"}
	case b.d.message == "":
		return nil, &MissingAttributeError{Attribute: "message"}
	}
	d := b.d
	return &d, nil
}

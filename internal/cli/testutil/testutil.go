// Package testutil provides renderer fixtures for command tests.
package testutil

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
)

// TestRenderer is a Renderer writing into buffers so tests can inspect
// what a command printed.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

func newTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText builds a text-mode renderer that believes it is on a
// terminal.
func NewTestRendererText() *TestRenderer {
	return newTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown builds a markdown-mode renderer, the piped-output
// default.
func NewTestRendererMarkdown() *TestRenderer {
	return newTestRenderer(output.ModeMarkdown, false)
}

// Output returns everything printed to stdout so far.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails the test when s carries ANSI escape sequences.
// Markdown and JSON output must stay clean for piping.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

func newRenderer(isTTY bool, mode output.Mode) (*output.Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return output.NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  output.Mode
		isTTY bool
		want  output.Mode
	}{
		{name: "auto on terminal resolves to text", mode: output.ModeAuto, isTTY: true, want: output.ModeText},
		{name: "auto piped resolves to markdown", mode: output.ModeAuto, isTTY: false, want: output.ModeMarkdown},
		{name: "empty mode behaves like auto", mode: "", isTTY: false, want: output.ModeMarkdown},
		{name: "explicit json passes through", mode: output.ModeJSON, isTTY: true, want: output.ModeJSON},
		{name: "explicit text passes through when piped", mode: output.ModeText, isTTY: false, want: output.ModeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRenderer(tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestPipedOutputCarriesNoEscapes(t *testing.T) {
	r, out, _ := newRenderer(false, output.ModeText)

	r.Header(1, "Results")
	r.Success("all good")
	r.Println(r.Styles().Error.Render("bad"))

	assert.NotContains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "Results")
	assert.Contains(t, out.String(), "all good")
}

func TestHeaderUsesMarkdownWhenPiped(t *testing.T) {
	r, out, _ := newRenderer(false, output.ModeMarkdown)

	r.Header(1, "Check Results")
	r.Header(2, "users")

	assert.Contains(t, out.String(), "# Check Results")
	assert.Contains(t, out.String(), "## users")
}

func TestJSONWritesIndented(t *testing.T) {
	r, out, _ := newRenderer(false, output.ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"violations": 2}))

	assert.Contains(t, out.String(), "  \"violations\": 2")

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 2, decoded["violations"])
}

func TestErrorWritesToErrStream(t *testing.T) {
	r, out, errOut := newRenderer(false, output.ModeText)

	r.Error("something broke")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "something broke")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", output.FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", output.FormatHeader(3, "Deep"))
	assert.Equal(t, "# Clamped", output.FormatHeader(0, "Clamped"))
	assert.Equal(t, "- **Driver:** sqlite", output.FormatKeyValue("Driver", "sqlite"))
	assert.Equal(t, "```sql\nSELECT 1\n```", output.FormatCodeBlock("sql", "SELECT 1"))
}

func TestReportClassifiesFindings(t *testing.T) {
	diag, err := lint.NewDiagnostic().
		Rule("HasPrimaryKey").
		Object("users").
		Message("Table 'users' does not have a primary key").
		Resolution("Add a primary key column to table 'users'").
		Build()
	require.NoError(t, err)

	rep := output.NewReport("schema.sql")
	assert.True(t, rep.Passed)

	rep.Add(&lint.TableViolation{Info: diag})
	rep.Add(&lint.UnapplicableRule{Rule: "custom.check_table_x", Message: "script error: boom"})
	rep.Add(errors.New("opaque failure"))

	assert.False(t, rep.Passed)
	require.Len(t, rep.Violations, 2)
	assert.Equal(t, "HasPrimaryKey", rep.Violations[0].Rule)
	assert.Equal(t, "users", rep.Violations[0].Object)
	assert.Equal(t, "Add a primary key column to table 'users'", rep.Violations[0].Resolution)
	assert.Equal(t, "opaque failure", rep.Violations[1].Message)
	assert.Empty(t, rep.Violations[1].Rule)

	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, "custom.check_table_x", rep.Skipped[0].Rule)
}

func TestReportSkipsDoNotFail(t *testing.T) {
	rep := output.NewReport(":memory:")
	rep.AddAll([]error{
		&lint.UnapplicableRule{Rule: "naming.check_table_tmp", Message: "verdict dict has no 'message'"},
	})

	assert.True(t, rep.Passed)
	assert.Empty(t, rep.Violations)
	require.Len(t, rep.Skipped, 1)
}

func TestReportMarshalsWithIdentity(t *testing.T) {
	rep := output.NewReport("db.sqlite")

	raw, err := json.Marshal(rep)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotEmpty(t, decoded["id"])
	assert.NotEmpty(t, decoded["generated_at"])
	assert.Equal(t, "db.sqlite", decoded["source"])
	assert.Equal(t, true, decoded["passed"])

	violations, ok := decoded["violations"].([]any)
	require.True(t, ok, "violations should marshal as an array even when empty")
	assert.Empty(t, violations)
	_, hasSkipped := decoded["skipped"]
	assert.False(t, hasSkipped, "skipped should be omitted when empty")
}

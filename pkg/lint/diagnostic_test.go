package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticBuilder(t *testing.T) {
	d, err := NewDiagnostic().
		Rule("SnakeCaseTableName").
		Object("UserAccounts").
		Message("Table name 'UserAccounts' contains uppercase letters").
		Resolution("Change 'UserAccounts' to 'user_accounts' (use lowercase letters and single underscores only)").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "SnakeCaseTableName", d.Rule())
	assert.Equal(t, "UserAccounts", d.Object())
	assert.Equal(t, "Table name 'UserAccounts' contains uppercase letters", d.Message())

	resolution, ok := d.Resolution()
	require.True(t, ok)
	assert.Equal(t, "Change 'UserAccounts' to 'user_accounts' (use lowercase letters and single underscores only)", resolution)
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Diagnostic, error)
		want  string
	}{
		{
			name: "with resolution",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().
					Rule("HasPrimaryKey").
					Object("users").
					Message("Table 'users' has no primary key").
					Resolution("Add a primary key column to table 'users'").
					Build()
			},
			want: "Rule: HasPrimaryKey\nObject: users\nMessage: Table 'users' has no primary key\nResolution: Add a primary key column to table 'users'",
		},
		{
			name: "without resolution",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().
					Rule("HasPrimaryKey").
					Object("users").
					Message("Table 'users' has no primary key").
					Build()
			},
			want: "Rule: HasPrimaryKey\nObject: users\nMessage: Table 'users' has no primary key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDiagnosticBuilderEmptyAttributes(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Diagnostic, error)
		wantErr error
	}{
		{
			name: "empty rule",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("").Object("users").Message("m").Build()
			},
			wantErr: ErrEmptyRule,
		},
		{
			name: "whitespace rule",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("  \t").Object("users").Message("m").Build()
			},
			wantErr: ErrEmptyRule,
		},
		{
			name: "empty object",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("r").Object("").Message("m").Build()
			},
			wantErr: ErrEmptyObject,
		},
		{
			name: "empty message",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("r").Object("users").Message("   ").Build()
			},
			wantErr: ErrEmptyMessage,
		},
		{
			name: "empty resolution",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("r").Object("users").Message("m").Resolution("").Build()
			},
			wantErr: ErrEmptyResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.build()
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiagnosticBuilderMissingAttributes(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*Diagnostic, error)
		attribute string
	}{
		{
			name:      "nothing set",
			build:     func() (*Diagnostic, error) { return NewDiagnostic().Build() },
			attribute: "rule",
		},
		{
			name: "object missing",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("r").Message("m").Build()
			},
			attribute: "object",
		},
		{
			name: "message missing",
			build: func() (*Diagnostic, error) {
				return NewDiagnostic().Rule("r").Object("users").Build()
			},
			attribute: "message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.build()
			assert.Nil(t, d)

			var missing *MissingAttributeError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.attribute, missing.Attribute)
			assert.Equal(t, "missing attribute: "+tt.attribute, err.Error())
		})
	}
}

func TestDiagnosticBuilderKeepsFirstError(t *testing.T) {
	d, err := NewDiagnostic().
		Rule("").
		Object("").
		Message("still reported against rule").
		Build()
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrEmptyRule)
}

func TestDiagnosticBuilderOverwrites(t *testing.T) {
	d, err := NewDiagnostic().
		Rule("first").
		Rule("second").
		Object("users").
		Message("m").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "second", d.Rule())
}

func TestDiagnosticMarshalJSON(t *testing.T) {
	d, err := NewDiagnostic().
		Rule("LowercaseTableName").
		Object("Users").
		Message("Table name 'Users' is not lowercase").
		Resolution("Rename the table to be all lowercase").
		Build()
	require.NoError(t, err)

	got, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"rule": "LowercaseTableName",
		"object": "Users",
		"message": "Table name 'Users' is not lowercase",
		"resolution": "Rename the table to be all lowercase"
	}`, string(got))

	d, err = NewDiagnostic().Rule("r").Object("o").Message("m").Build()
	require.NoError(t, err)

	got, err = d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule": "r", "object": "o", "message": "m"}`, string(got))
}

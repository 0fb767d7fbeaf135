// Package scripting loads user-defined lint rules written in Starlark.
// Rules live in *.star files; every exported function whose name starts
// with check_table, check_column, or check_foreign_key becomes a rule of
// the matching kind, named "<file>.<function>". The function receives the
// entity as a dict and returns None to pass, a message string to fail, or
// a dict with message, object, and resolution keys.
package scripting

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// Loader scans a directory for .star files and turns their exported check
// functions into rules.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given rules directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, logger: logger}
}

// Load executes every .star file in the rules directory and collects the
// rules it exports, in file then function name order. A missing directory
// yields no rules.
func (l *Loader) Load() ([]lint.Rule, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("access rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("scan rules directory: %w", err)
	}

	var rules []lint.Rule
	for _, file := range files {
		loaded, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}

// loadFile executes one .star file and builds rules from its exports.
func (l *Loader) loadFile(path string) ([]lint.Rule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob of the configured rules directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := &starlark.Thread{
		Name: "load:" + namespace,
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Debug("script print", "file", filepath.Base(path), "message", msg)
		},
	}

	globals, err := starlark.ExecFileOptions(syntax.LegacyFileOptions(), thread, path, content, nil)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("starlark execution: %v", err)}
	}
	// Frozen globals are safe to call from the concurrent analyzer.
	globals.Freeze()

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var rules []lint.Rule
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		kind, ok := checkKind(name)
		if !ok {
			continue
		}
		fn, ok := globals[name].(*starlark.Function)
		if !ok {
			return nil, &LoadError{File: path, Message: fmt.Sprintf("export %q is not a function", name)}
		}

		base := scriptRule{
			name:        namespace + "." + name,
			description: describe(fn, namespace),
			fn:          fn,
			logger:      l.logger,
		}
		switch kind {
		case lint.KindTable:
			rules = append(rules, TableRule{base})
		case lint.KindColumn:
			rules = append(rules, ColumnRule{base})
		case lint.KindForeignKey:
			rules = append(rules, ForeignKeyRule{base})
		}
		l.logger.Debug("loaded scripted rule", "rule", base.name, "kind", string(kind))
	}
	return rules, nil
}

// checkKind maps an export name to the rule kind it declares.
func checkKind(name string) (lint.Kind, bool) {
	switch {
	case strings.HasPrefix(name, "check_foreign_key"):
		return lint.KindForeignKey, true
	case strings.HasPrefix(name, "check_column"):
		return lint.KindColumn, true
	case strings.HasPrefix(name, "check_table"):
		return lint.KindTable, true
	}
	return "", false
}

// describe derives the rule description from the function docstring.
func describe(fn *starlark.Function, namespace string) string {
	doc := strings.TrimSpace(fn.Doc())
	if doc == "" {
		return fmt.Sprintf("Scripted rule from %s.star", namespace)
	}
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		doc = strings.TrimSpace(doc[:i])
	}
	return doc
}

// validateNamespace checks that a filename-derived namespace is a valid
// identifier, so rule names stay parseable.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("namespace must start with letter or underscore: %s", name)
			}
			continue
		}
		if !isLetter(r) && !isDigit(r) && r != '_' {
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError reports a rules file that could not be loaded.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules/%s: %s", filepath.Base(e.File), e.Message)
}

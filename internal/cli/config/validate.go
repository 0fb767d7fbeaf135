package config

import (
	"fmt"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Output {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output mode %q (want auto, text, markdown, or json)", c.Output)
	}

	// Driver names are only checkable once driver packages have registered.
	if c.Driver != "" && len(inspect.List()) > 0 && !inspect.IsRegistered(c.Driver) {
		return fmt.Errorf("unknown driver %q\nAvailable drivers: %v", c.Driver, inspect.List())
	}

	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port %d (want 1-65535)", c.Serve.Port)
	}

	// Unknown names in lint.disabled are rejected while the rule registry is
	// populated. Scripted rule names carry a dot and resolve against the
	// rules directory at run time, so they pass through.
	if lint.Count() > 0 {
		for _, name := range c.Lint.Disabled {
			name = strings.TrimSpace(name)
			if name == "" || strings.Contains(name, ".") {
				continue
			}
			if _, ok := lint.GetByName(name); !ok {
				return fmt.Errorf("unknown rule %q in lint.disabled\nHint: run 'sqlrules rules' to list rule names", name)
			}
		}
	}

	return nil
}

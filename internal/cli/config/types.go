// Package config loads and validates configuration for the sqlrules CLI.
//
// Configuration is layered from four sources, later sources winning:
// built-in defaults, a sqlrules.yaml file (explicit --config flag, working
// directory, or upward discovery), SQLRULES_ environment variables, and
// command line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Driver   string      `koanf:"driver"`
	DSN      string      `koanf:"dsn"`
	Output   string      `koanf:"output"`
	Verbose  bool        `koanf:"verbose"`
	FailFast bool        `koanf:"fail_fast"`
	RulesDir string      `koanf:"rules_dir"`
	Lint     LintConfig  `koanf:"lint"`
	Serve    ServeConfig `koanf:"serve"`
}

// LintConfig tunes the rule set.
type LintConfig struct {
	Disabled         []string `koanf:"disabled"`
	ForbiddenColumn  string   `koanf:"forbidden_column"`
	ReservedKeywords []string `koanf:"reserved_keywords"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Default configuration values.
const (
	DefaultDriver    = "sqlite"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeHost = "127.0.0.1"
	DefaultServePort = 8080
)

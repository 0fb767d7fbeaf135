package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey stores the logger in command contexts. Exposed through LoggerKey
// so the commands package can retrieve the logger without an import cycle
// with the cli package.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree config file
// discovery walks.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configFileNames are the file names discovery looks for, in order.
var configFileNames = []string{"sqlrules.yaml", "sqlrules.yml"}

// findConfigFile picks the config file to use.
// Priority: explicit path > working directory > upward search.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigUpward(cwd)
}

// findConfigUpward searches startDir and its parents for a config file.
// Returns the empty string when none is found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// envKey maps a SQLRULES_ environment variable name onto a config key.
// Section variables nest (SQLRULES_SERVE_PORT -> serve.port,
// SQLRULES_LINT_DISABLED -> lint.disabled); everything else maps flat, so
// SQLRULES_FAIL_FAST -> fail_fast.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "SQLRULES_"))
	for _, section := range []string{"lint", "serve"} {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

// listKeys are the config keys holding string lists. Their environment
// variables split on commas: SQLRULES_LINT_DISABLED="A,B" -> [A B].
var listKeys = map[string]bool{
	"lint.disabled":          true,
	"lint.reserved_keywords": true,
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for a fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"driver":     DefaultDriver,
		"dsn":        "",
		"output":     DefaultOutput,
		"verbose":    false,
		"fail_fast":  true,
		"rules_dir":  "",
		"serve.host": DefaultServeHost,
		"serve.port": DefaultServePort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load the config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (SQLRULES_ prefix)
	if err := k.Load(env.ProviderWithValue("SQLRULES_", ".", func(name, value string) (string, interface{}) {
		key := envKey(name)
		if listKeys[key] {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags, the highest layer
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Unchanged flags keep the lower layers
			if !f.Changed {
				return "", nil
			}
			// Flag names are kebab-case, config keys snake_case
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into the Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Commands read the loaded config through GetCurrentConfig
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration, or nil
// when LoadConfig has not run.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key under which the CLI stores its logger.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Discard as the safe fallback
	return slog.New(slog.DiscardHandler)
}

package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/config"
	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
)

// CommandContext bundles what every command needs to run.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles the config, logger, and renderer for a command
// invocation.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration. Commands constructed outside
// the root command (tests, mostly) have no loaded config, so environment
// variables and defaults stand in.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	driver := getEnvOrDefault("SQLRULES_DRIVER", config.DefaultDriver)
	dsn := os.Getenv("SQLRULES_DSN")
	outputMode := getEnvOrDefault("SQLRULES_OUTPUT", config.DefaultOutput)
	verbose := os.Getenv("SQLRULES_VERBOSE") == "true"
	rulesDir := os.Getenv("SQLRULES_RULES_DIR")

	return &config.Config{
		Driver:   driver,
		DSN:      dsn,
		Output:   outputMode,
		Verbose:  verbose,
		FailFast: true,
		RulesDir: rulesDir,
		Serve: config.ServeConfig{
			Host: config.DefaultServeHost,
			Port: config.DefaultServePort,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

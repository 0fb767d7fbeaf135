package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/config"
	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect"
	_ "github.com/earth-metabolome-initiative/sql-rules/internal/inspect/postgres" // register postgres inspector
	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect/sqlite"
	"github.com/earth-metabolome-initiative/sql-rules/internal/scripting"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint/rules"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	All      bool     // Collect every violation instead of stopping at the first
	Disable  []string // Rule names to disable
	RulesDir string   // Directory of Starlark rule scripts
	Watch    bool     // Re-check files on change
	Format   string   // Output format: text, json, markdown
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check schemas against the rule catalogue",
		Long: `Check database schemas against the registered lint rules.

DDL files are loaded into an in-memory SQLite database and the resulting
schema is checked. Without file arguments the configured live database is
introspected instead (--driver, --dsn).

Checking stops at the first violation unless --all is set. Rules can be
configured in sqlrules.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check DDL files
  sqlrules check schema.sql migrations/001_init.sql

  # Collect every violation instead of stopping at the first
  sqlrules check --all schema.sql

  # Check a live database
  sqlrules check --driver postgres --dsn postgres://localhost/app

  # Disable specific rules
  sqlrules check --disable PluralTableName,SnakeCaseTableName schema.sql

  # Add scripted rules
  sqlrules check --rules-dir ./rules schema.sql

  # Re-check on file change
  sqlrules check --watch schema.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Report all violations instead of stopping at the first")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule names to disable")
	cmd.Flags().StringVar(&opts.RulesDir, "rules-dir", "", "Directory of Starlark rule scripts")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Watch files and re-check on change")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// The format flag wins over the configured output mode
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	linter, err := buildLinter(cfg, opts, cmdCtx.Logger)
	if err != nil {
		return err
	}

	failFast := cfg.FailFast && !opts.All

	if len(args) == 0 {
		if cfg.DSN == "" {
			return fmt.Errorf("nothing to check: pass DDL files or configure --driver and --dsn")
		}
		report, err := checkDatabase(cmd.Context(), cfg, linter, failFast, cmdCtx.Logger)
		if err != nil {
			return err
		}
		if renderReports(r, []*output.Report{report}) {
			return fmt.Errorf("violations found")
		}
		return nil
	}

	if opts.Watch {
		return watchAndCheck(cmd, args, linter, failFast, r, cmdCtx.Logger)
	}

	reports, err := checkFiles(cmd.Context(), args, linter, failFast, cmdCtx.Logger)
	if err != nil {
		return err
	}
	if renderReports(r, reports) {
		return fmt.Errorf("violations found")
	}
	return nil
}

// buildLinter assembles a linter from the configured rule set.
func buildLinter(cfg *config.Config, opts *CheckOptions, logger *slog.Logger) (*lint.Linter, error) {
	selected, err := buildRules(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	return lint.NewLinter(selected...)
}

// buildRules assembles the rule set: the default bundle with configuration
// applied, minus disabled rules, plus scripted rules from the rules
// directory.
func buildRules(cfg *config.Config, opts *CheckOptions, logger *slog.Logger) ([]lint.Rule, error) {
	bundle := applyRuleConfig(rules.Default(), cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.Lint.Disabled {
		disabled[strings.TrimSpace(name)] = true
	}
	for _, name := range opts.Disable {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// Config-sourced names were validated at load time; flag names are
		// checked here. Scripted rule names carry a dot and resolve against
		// the rules directory below.
		if !strings.Contains(name, ".") {
			if _, ok := lint.GetByName(name); !ok {
				return nil, fmt.Errorf("unknown rule %q in --disable\nHint: run 'sqlrules rules' to list rule names", name)
			}
		}
		disabled[name] = true
	}

	selected := make([]lint.Rule, 0, len(bundle))
	for _, rule := range bundle {
		if disabled[rule.Name()] {
			continue
		}
		selected = append(selected, rule)
	}

	rulesDir := cfg.RulesDir
	if opts.RulesDir != "" {
		rulesDir = opts.RulesDir
	}
	if rulesDir != "" {
		scripted, err := scripting.NewLoader(rulesDir, logger).Load()
		if err != nil {
			return nil, err
		}
		for _, rule := range scripted {
			if disabled[rule.Name()] {
				continue
			}
			selected = append(selected, rule)
		}
	}

	return selected, nil
}

// applyRuleConfig replaces configurable rules in the bundle with instances
// carrying the configured values.
func applyRuleConfig(bundle []lint.Rule, cfg *config.Config) []lint.Rule {
	forbidden := cfg.Lint.ForbiddenColumn
	keywords := cfg.Lint.ReservedKeywords
	if forbidden == "" && len(keywords) == 0 {
		return bundle
	}

	for i, rule := range bundle {
		switch rule.(type) {
		case rules.NoForbiddenColumnInExtension:
			if forbidden != "" {
				bundle[i] = rules.NoForbiddenColumnInExtension{ForbiddenName: forbidden}
			}
		case rules.NoReservedKeywordTableName:
			if len(keywords) > 0 {
				bundle[i] = rules.NoReservedKeywordTableName{Keywords: keywords}
			}
		case rules.NoReservedKeywordColumnName:
			if len(keywords) > 0 {
				bundle[i] = rules.NoReservedKeywordColumnName{Keywords: keywords}
			}
		case rules.NoReservedKeywordForeignKeyName:
			if len(keywords) > 0 {
				bundle[i] = rules.NoReservedKeywordForeignKeyName{Keywords: keywords}
			}
		}
	}
	return bundle
}

// checkFiles lints DDL files through an in-memory SQLite load, one report
// per file.
func checkFiles(ctx context.Context, paths []string, linter *lint.Linter, failFast bool, logger *slog.Logger) ([]*output.Report, error) {
	reports := make([]*output.Report, 0, len(paths))
	for _, path := range paths {
		ddl, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		db, err := sqlite.LoadDDL(ctx, logger, string(ddl))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		reports = append(reports, runLinter(db, linter, failFast, path))
	}
	return reports, nil
}

// checkDatabase introspects the configured live database and lints the
// resulting schema.
func checkDatabase(ctx context.Context, cfg *config.Config, linter *lint.Linter, failFast bool, logger *slog.Logger) (*output.Report, error) {
	insp, err := inspect.New(cfg.Driver, logger)
	if err != nil {
		return nil, err
	}
	if err := insp.Connect(ctx, cfg.DSN); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = insp.Close() }()

	db, err := insp.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect schema: %w", err)
	}

	// The DSN may carry credentials, so the report names the database
	// through its driver instead.
	source := cfg.Driver + ":" + db.Name()
	return runLinter(db, linter, failFast, source), nil
}

// runLinter applies the rule set to one schema and folds the findings into
// a report.
func runLinter(db *schema.Database, linter *lint.Linter, failFast bool, source string) *output.Report {
	report := output.NewReport(source)
	if failFast {
		if err := linter.ValidateSchema(db); err != nil {
			report.Add(err)
		}
		return report
	}
	report.AddAll(linter.AnalyzeSchema(db))
	return report
}

// renderReports writes the check results and reports whether any violations
// were found.
func renderReports(r *output.Renderer, reports []*output.Report) bool {
	violations := 0
	skipped := 0
	for _, rep := range reports {
		violations += len(rep.Violations)
		skipped += len(rep.Skipped)
	}

	mode := r.EffectiveMode()

	if mode == output.ModeJSON {
		_ = r.JSON(reports)
		return violations > 0
	}

	if violations == 0 && skipped == 0 {
		r.Success("No violations found")
		return false
	}

	styles := r.Styles()
	for _, rep := range reports {
		if rep.Passed && len(rep.Skipped) == 0 {
			r.Success(rep.Source + ": no violations")
			continue
		}

		r.Header(2, rep.Source)
		r.Println("")
		for _, v := range rep.Violations {
			if v.Rule == "" {
				r.Printf("%s %s\n\n", styles.Error.Render("Error:"), v.Message)
				continue
			}
			if mode == output.ModeMarkdown {
				r.Println(output.FormatKeyValue("Rule", v.Rule))
				r.Println(output.FormatKeyValue("Object", v.Object))
				r.Println(output.FormatKeyValue("Message", v.Message))
				if v.Resolution != "" {
					r.Println(output.FormatKeyValue("Resolution", v.Resolution))
				}
			} else {
				r.Printf("%s %s\n", styles.Error.Render("Rule:"), v.Rule)
				r.Printf("%s %s\n", styles.Bold.Render("Object:"), v.Object)
				r.Printf("%s %s\n", styles.Bold.Render("Message:"), v.Message)
				if v.Resolution != "" {
					r.Printf("%s %s\n", styles.Bold.Render("Resolution:"), v.Resolution)
				}
			}
			r.Println("")
		}
		for _, s := range rep.Skipped {
			r.Printf("%s %s: %s\n", styles.Warning.Render("Skipped:"), s.Rule, s.Message)
		}
		if len(rep.Skipped) > 0 {
			r.Println("")
		}
	}

	summaryParts := []string{fmt.Sprintf("%d violations", violations)}
	if skipped > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d skipped", skipped))
	}
	r.Printf("Summary: %s in %d schemas\n", strings.Join(summaryParts, ", "), len(reports))

	return violations > 0
}

// watchAndCheck re-checks the files whenever one of them changes.
func watchAndCheck(cmd *cobra.Command, paths []string, linter *lint.Linter, failFast bool, r *output.Renderer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories rather than the files themselves: editors
	// replace files on save, which drops file-level watches.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	check := func() {
		reports, err := checkFiles(ctx, paths, linter, failFast, logger)
		if err != nil {
			r.Error(err.Error())
			return
		}
		renderReports(r, reports)
	}

	check()
	r.Println("Watching for changes. Press Ctrl+C to stop.")

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
				logger.Debug("file changed, re-checking", "file", event.Name)
				check()
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}

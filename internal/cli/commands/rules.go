package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
	_ "github.com/earth-metabolome-initiative/sql-rules/pkg/lint/rules" // register the default rule catalogue
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Kind   string // Filter by entity kind
	Format string // Output format: text, json, markdown
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-name]",
		Short: "List the registered lint rules",
		Long: `List the registered lint rules with the entity kinds they validate.

Pass a rule name to show the details of a single rule. Rules that
validate several entity kinds are listed once with every kind.`,
		Example: `  # List all rules
  sqlrules rules

  # Show one rule
  sqlrules rules HasPrimaryKey

  # List table rules only
  sqlrules rules --kind table

  # Output as JSON
  sqlrules rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, lint.Count())
			for _, r := range lint.GetAll() {
				names = append(names, r.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Filter by entity kind: table, column, foreign-key")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(lint.KindTable), string(lint.KindColumn), string(lint.KindForeignKey)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := commandRenderer(cmd, opts.Format)

	ruleSet, err := selectRules(opts.Kind)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.NewCatalogue(ruleSet))
	case output.ModeMarkdown:
		renderRulesMarkdown(r, ruleSet)
	default:
		renderRulesTable(r, ruleSet)
	}
	return nil
}

func showRule(cmd *cobra.Command, name string, opts *RulesOptions) error {
	r := commandRenderer(cmd, opts.Format)

	rule, ok := lint.GetByName(name)
	if !ok {
		return fmt.Errorf("unknown rule %q\nHint: run 'sqlrules rules' to list rule names", name)
	}
	info := lint.GetRuleInfo(rule)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(2, info.Name))
		r.Println("")
		r.Println(output.FormatKeyValue("Kinds", joinKinds(info.Kinds)))
		r.Println(output.FormatKeyValue("Description", info.Description))
	default:
		r.Println(r.Styles().Header2.Render(info.Name))
		r.Printf("%s %s\n", r.Styles().Bold.Render("Kinds:"), joinKinds(info.Kinds))
		r.Printf("%s %s\n", r.Styles().Bold.Render("Description:"), info.Description)
	}
	return nil
}

// commandRenderer returns the context renderer, overridden by the format
// flag when set.
func commandRenderer(cmd *cobra.Command, format string) *output.Renderer {
	cmdCtx := NewCommandContext(cmd)
	if format != "" {
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
	return cmdCtx.Renderer
}

// selectRules returns the registered rules, filtered by kind when one is
// given.
func selectRules(kind string) ([]lint.Rule, error) {
	if kind == "" {
		return lint.GetAll(), nil
	}
	switch lint.Kind(kind) {
	case lint.KindTable, lint.KindColumn, lint.KindForeignKey:
		return lint.GetByKind(lint.Kind(kind)), nil
	default:
		return nil, fmt.Errorf("unknown kind %q (want table, column, or foreign-key)", kind)
	}
}

func renderRulesTable(r *output.Renderer, ruleSet []lint.Rule) {
	if len(ruleSet) == 0 {
		r.Println("(0 rules)")
		return
	}

	r.Println(r.Styles().Header1.Render("Lint Rules"))
	r.Println("")

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "KINDS", "DESCRIPTION"})
	for _, rule := range ruleSet {
		info := lint.GetRuleInfo(rule)
		t.AppendRow(table.Row{info.Name, joinKinds(info.Kinds), info.Description})
	}
	t.Render()

	r.Printf("(%d rules)\n", len(ruleSet))
}

func renderRulesMarkdown(r *output.Renderer, ruleSet []lint.Rule) {
	r.Println(output.FormatHeader(1, "Lint Rules"))
	r.Println("")

	if len(ruleSet) == 0 {
		r.Println("(0 rules)")
		return
	}

	r.Println("| Name | Kinds | Description |")
	r.Println("| --- | --- | --- |")
	for _, rule := range ruleSet {
		info := lint.GetRuleInfo(rule)
		r.Printf("| %s | %s | %s |\n", info.Name, joinKinds(info.Kinds), info.Description)
	}
	r.Println("")
	r.Printf("(%d rules)\n", len(ruleSet))
}

func joinKinds(kinds []lint.Kind) string {
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ", ")
}

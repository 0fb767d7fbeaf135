package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/earth-metabolome-initiative/sql-rules/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Host string
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint API over HTTP",
		Long: `Serve the lint API over HTTP.

Endpoints:
  GET  /healthz    - liveness probe
  GET  /api/rules  - rule catalogue
  POST /api/check  - check a DDL schema: {"ddl": "...", "all": true, "disabled": [...]}

The rule set is assembled from configuration the same way the check command
assembles it. The server runs until interrupted.`,
		Example: `  # Serve on the configured host and port
  sqlrules serve

  # Serve on another port
  sqlrules serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Listen host (defaults to serve.host from config)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Listen port (defaults to serve.port from config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	ruleSet, err := buildRules(cfg, &CheckOptions{}, cmdCtx.Logger)
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Serve.Host
	srvCfg.Port = cfg.Serve.Port
	srvCfg.FailFast = cfg.FailFast
	if opts.Host != "" {
		srvCfg.Host = opts.Host
	}
	if opts.Port != 0 {
		srvCfg.Port = opts.Port
	}

	srv := server.New(srvCfg, ruleSet, cmdCtx.Logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx.Renderer.Printf("Serving lint API on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}

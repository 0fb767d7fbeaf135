// Package postgres introspects PostgreSQL databases into the lint schema
// model through the pgx stdlib driver. The inspector registers itself under
// the name "postgres":
//
//	import _ "github.com/earth-metabolome-initiative/sql-rules/internal/inspect/postgres"
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect"
)

func init() {
	inspect.Register("postgres", New)
}

// Inspector reads table structure from information_schema and the system
// catalogs of one PostgreSQL schema, "public" unless changed.
type Inspector struct {
	db         *sqlx.DB
	logger     *slog.Logger
	schemaName string
}

// New returns an unconnected inspector targeting the public schema.
func New(logger *slog.Logger) inspect.Inspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inspector{logger: logger, schemaName: "public"}
}

// SetSchema switches introspection to another schema.
func (i *Inspector) SetSchema(name string) {
	if name != "" {
		i.schemaName = name
	}
}

// Connect opens a connection pool for the DSN and verifies it with a ping.
func (i *Inspector) Connect(ctx context.Context, dsn string) error {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	i.db = db
	return nil
}

// Close releases the connection pool.
func (i *Inspector) Close() error {
	if i.db == nil {
		return nil
	}
	i.logger.Debug("closing postgres connection")
	return i.db.Close()
}

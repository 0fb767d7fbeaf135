// Package sqlite introspects SQLite databases into the lint model through
// PRAGMA queries. It registers itself as the "sqlite" driver.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

func init() {
	inspect.Register("sqlite", New)
}

// Inspector implements inspect.Inspector for SQLite databases.
type Inspector struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New returns an unconnected SQLite inspector.
func New(logger *slog.Logger) inspect.Inspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inspector{logger: logger}
}

// Connect opens the SQLite database at the DSN. The DSN is a file path
// (e.g. "/path/to/db.sqlite") or ":memory:" for an in-memory database.
func (i *Inspector) Connect(ctx context.Context, dsn string) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
	}
	i.db = db
	return nil
}

// Close closes the database connection.
func (i *Inspector) Close() error {
	if i.db != nil {
		i.logger.Debug("closing sqlite connection")
		return i.db.Close()
	}
	return nil
}

// LoadDDL executes DDL statements against an in-memory database and
// introspects the result. This is the path behind linting schema files.
func LoadDDL(ctx context.Context, logger *slog.Logger, ddl string) (*schema.Database, error) {
	insp, ok := New(logger).(*Inspector)
	if !ok {
		return nil, fmt.Errorf("unexpected inspector type")
	}
	if err := insp.Connect(ctx, ":memory:"); err != nil {
		return nil, err
	}
	defer insp.Close()

	if _, err := insp.db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("execute ddl: %w", err)
	}
	return insp.Schema(ctx)
}

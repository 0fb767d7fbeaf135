// Package inspect loads live database schemas into the lint model. Concrete
// drivers live in subpackages and register themselves at init time; import
// them blank to make them available:
//
//	import _ "github.com/earth-metabolome-initiative/sql-rules/internal/inspect/sqlite"
package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/schema"
)

// Inspector connects to a database and introspects its schema.
type Inspector interface {
	// Connect opens the connection described by the DSN.
	Connect(ctx context.Context, dsn string) error

	// Close releases the connection. Safe to call on a never-connected
	// inspector.
	Close() error

	// Schema introspects the connected database into the lint model.
	Schema(ctx context.Context) (*schema.Database, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Inspector)
)

// Register adds an inspector factory to the registry.
// Called by driver implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Inspector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an inspector for the named driver. A nil logger is replaced
// with a discard logger by the driver.
func New(name string, logger *slog.Logger) (Inspector, error) {
	if name == "" {
		return nil, fmt.Errorf("driver not specified")
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownDriverError{
			Driver:    name,
			Available: List(),
		}
	}
	return factory(logger), nil
}

// List returns all registered driver names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks whether a driver is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownDriverError is returned when an unknown driver is requested.
type UnknownDriverError struct {
	Driver    string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver %q\nAvailable drivers: %v\nHint: check the driver setting in sqlrules.yaml", e.Driver, e.Available)
}

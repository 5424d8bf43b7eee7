// Package migrations applies the embedded schema files with goose.
// Applied versions are recorded in sys_migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

// VersionTable is where goose records applied versions.
const VersionTable = "sys_migrations"

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the schema files rooted at their directory, as goose expects.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator runs goose migrations over Files.
type Migrator struct {
	provider *goose.Provider
}

// New builds a migrator on db.
func New(db *sql.DB) (*Migrator, error) {
	return newMigrator(db, Files())
}

// NewFromPool builds a migrator sharing the connections of pool.
func NewFromPool(pool *postgres.Pool) (*Migrator, error) {
	return New(stdlib.OpenDBFromPool(pool.Pool))
}

func newMigrator(db *sql.DB, fsys fs.FS) (*Migrator, error) {
	store, err := database.NewStore(database.DialectPostgres, VersionTable)
	if err != nil {
		return nil, fmt.Errorf("migration store: %w", err)
	}
	// A custom store carries the dialect, so NewProvider takes none.
	provider, err := goose.NewProvider("", db, fsys, goose.WithStore(store))
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// Sources lists every embedded migration file in version order.
func (m *Migrator) Sources() []string {
	sources := m.provider.ListSources()
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, path.Base(s.Path))
	}
	return out
}

// Up applies every pending migration, each in its own transaction, and
// returns the files applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	results, err := m.provider.Up(ctx)
	done := make([]string, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		name := path.Base(r.Source.Path)
		logger.Info(ctx, "migration applied", "version", r.Source.Version, "file", name, "duration", r.Duration)
		done = append(done, name)
	}
	if err != nil {
		return done, postgres.StorageError("migrate", err)
	}
	return done, nil
}

// Pending returns the files not applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, postgres.StorageError("migration status", err)
	}
	var out []string
	for _, s := range statuses {
		if s.State == goose.StatePending {
			out = append(out, path.Base(s.Source.Path))
		}
	}
	return out, nil
}

// Close releases the database handle. A pool-backed handle leaves the pool open.
func (m *Migrator) Close() error {
	return m.provider.Close()
}

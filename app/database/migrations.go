package database

import (
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// runMigrations applies all pending migrations for the given dialect and
// returns the resulting schema version.
func runMigrations(db *sqlx.DB, dialectName string) (uint, error) {
	var (
		driver migratedb.Driver
		err    error
	)

	switch dialectName {
	case "postgres":
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return 0, fmt.Errorf("no migrations for dialect %q", dialectName)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create %s migration driver: %w", dialectName, err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+dialectName)
	if err != nil {
		return 0, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialectName, driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("ledger schema is dirty at version %d", version)
	}

	slog.Debug("Ledger schema migrated", "dialect", dialectName, "version", version)
	return version, nil
}

// internal/database/migration.go
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = "scan_history_migrations"

// MigrationStatus describes the schema state of the history database
type MigrationStatus struct {
	Version uint `json:"version"`
	Latest  uint `json:"latest"`
	Dirty   bool `json:"dirty"`
}

// Pending reports whether embedded migrations have not been applied yet
func (s MigrationStatus) Pending() bool {
	return s.Version < s.Latest
}

// Migrator applies the embedded scan history migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With(zap.String("component", "migrator")),
	}
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run("up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down rolls the history schema back completely
func (m *Migrator) Down() error {
	return m.run("down", func(mg *migrate.Migrate) error { return mg.Down() })
}

// Status compares the applied version with the newest embedded one
func (m *Migrator) Status() (MigrationStatus, error) {
	var status MigrationStatus

	latest, err := LatestMigrationVersion()
	if err != nil {
		return status, err
	}
	status.Latest = latest

	err = m.with(func(mg *migrate.Migrate) error {
		version, dirty, err := mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		status.Version, status.Dirty = version, dirty
		return nil
	})
	if err != nil {
		return status, fmt.Errorf("failed to read migration version: %w", err)
	}

	return status, nil
}

func (m *Migrator) run(direction string, step func(*migrate.Migrate) error) error {
	err := m.with(func(mg *migrate.Migrate) error {
		if err := step(mg); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	m.logger.Info("Database migrations applied", zap.String("direction", direction))
	return nil
}

func (m *Migrator) with(fn func(*migrate.Migrate) error) error {
	ctx := context.Background()

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire migration connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	src, err := migrationSource()
	if err != nil {
		driver.Close()
		return err
	}

	mg, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	// Releases the dedicated connection; the pool stays open.
	defer mg.Close()
	return fn(mg)
}

func migrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}

// LatestMigrationVersion returns the newest embedded migration version
func LatestMigrationVersion() (uint, error) {
	src, err := migrationSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no embedded migrations: %w", err)
	}

	for {
		next, err := src.Next(version)
		if err != nil {
			return version, nil
		}
		version = next
	}
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsSource is relative to the working directory of the server.
const DefaultMigrationsSource = "file://migrations"

// MigrationStatus reports the schema version after a migration run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Changed bool
}

func newMigrate(databaseURL, source string) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() { db.Close() }, nil
}

// RunMigrations applies every pending up migration from source.
func RunMigrations(databaseURL, source string) (*MigrationStatus, error) {
	m, closeDB, err := newMigrate(databaseURL, source)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	status := &MigrationStatus{Changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		status.Changed = false
	}

	if err := fillVersion(m, status); err != nil {
		return nil, err
	}
	if status.Dirty {
		return status, fmt.Errorf("migration version %d is dirty - manual intervention required", status.Version)
	}

	if status.Changed {
		log.Printf("migrations: applied successfully (version %d)", status.Version)
	} else {
		log.Printf("migrations: database is up to date (version %d)", status.Version)
	}
	return status, nil
}

// RollbackMigrations reverts the last steps migrations.
func RollbackMigrations(databaseURL, source string, steps int) (*MigrationStatus, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, closeDB, err := newMigrate(databaseURL, source)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	if err := m.Steps(-steps); err != nil {
		return nil, fmt.Errorf("failed to roll back migrations: %w", err)
	}

	status := &MigrationStatus{Changed: true}
	if err := fillVersion(m, status); err != nil {
		return nil, err
	}
	return status, nil
}

// MigrationVersion reports the current schema version without changing it.
func MigrationVersion(databaseURL, source string) (*MigrationStatus, error) {
	m, closeDB, err := newMigrate(databaseURL, source)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	status := &MigrationStatus{}
	if err := fillVersion(m, status); err != nil {
		return nil, err
	}
	return status, nil
}

func fillVersion(m *migrate.Migrate, status *MigrationStatus) error {
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	status.Version = version
	status.Dirty = dirty
	return nil
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration wraps golang-migrate for applying the embedded schema.
//
// # Architecture
//
// SQL files are compiled into the binary (see the root migrations package) and
// read through the iofs source driver, so the API server and the operator CLI
// never depend on a migrations directory being present on disk.
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Status describes the schema version currently recorded in the database.
type Status struct {
	Version uint
	Dirty   bool
}

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - dsn: A postgres:// URL.
//   - migrations: Filesystem holding the numbered *.sql files at its root.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrations fs.FS, logger *slog.Logger) error {
	migrator, err := open(dsn, migrations, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	current, err := version(migrator)
	if err != nil {
		return err
	}

	if current.Dirty {
		return fmt.Errorf("migration: database is dirty at version %d (manual intervention required)", current.Version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(current.Version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	next, err := version(migrator)
	if err != nil {
		return err
	}

	logger.Info("migration_successful",
		slog.Int("from_version", int(current.Version)),
		slog.Int("to_version", int(next.Version)),
	)
	return nil
}

// CurrentStatus reports the applied version without changing anything.
func CurrentStatus(dsn string, migrations fs.FS, logger *slog.Logger) (Status, error) {
	migrator, err := open(dsn, migrations, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(migrator, logger)

	return version(migrator)
}

func open(dsn string, migrations fs.FS, logger *slog.Logger) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("migration: failed to read embedded files: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, toPgx5DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &migrateLogger{logger: logger}
	return migrator, nil
}

func version(migrator *migrate.Migrate) (Status, error) {
	current, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return Status{Version: current, Dirty: dirty}, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceError, dbError := migrator.Close()
	if sourceError != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// toPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// registered by the golang-migrate pgx/v5 driver.
func toPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return false
}

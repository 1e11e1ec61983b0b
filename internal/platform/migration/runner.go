// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration wraps golang-migrate to bring the users, collab and system
// schemas up to date at startup, before traffic is served.
//
// Migrations are embedded in the binary. MIGRATION_PATH points the runner at a
// directory on disk instead, which is handy while writing a new migration.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taibuivan/meattrack/data"
)

/*
RunUp applies every pending UP migration.

A dirty schema (a previous run failed halfway) stops startup; it needs a
manual `migrate force`.

Parameters:
  - dsn: postgres:// URL of the target database
  - path: Migrations directory on disk, or empty for the embedded set
  - logger: *slog.Logger

Returns:
  - error: Initialization, dirty state or apply failures
*/
func RunUp(dsn, path string, logger *slog.Logger) error {
	migrator, err := newMigrator(dsn, path)
	if err != nil {
		return fmt.Errorf("migration_init_failed: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if err := errors.Join(sourceError, dbError); err != nil {
			logger.Warn("migration_close_failed", slog.Any("error", err))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration_version_failed: %w", err)
	case dirty:
		return fmt.Errorf("migration_dirty: schema stuck at version %d", from)
	}

	logger.Info("migration_started", slog.Uint64("current_version", uint64(from)), slog.Bool("embedded", path == ""))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration_up_failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_successful", slog.Uint64("from_version", uint64(from)), slog.Uint64("to_version", uint64(to)))
	return nil
}

func newMigrator(dsn, path string) (*migrate.Migrate, error) {
	if path != "" {
		return migrate.New("file://"+path, toPgx5DSN(dsn))
	}

	embedded, err := embeddedSource()
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", embedded, toPgx5DSN(dsn))
}

// embeddedSource serves the migrations compiled into the binary.
func embeddedSource() (source.Driver, error) {
	return iofs.New(data.Migrations, "migrations")
}

// toPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// the golang-migrate pgx/v5 driver registers.
func toPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate's progress lines to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return false
}

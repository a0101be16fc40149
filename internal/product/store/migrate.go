package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrateOptions controls how the schema is brought up to date.
type MigrateOptions struct {
	Dialect Dialect
	// URL is the PostgreSQL connection URL. Unused for SQLite, which migrates through DB.
	URL string
	DB  *sql.DB
	// Reset drops every table before migrating.
	Reset bool
}

// Migrate applies the embedded migrations of the dialect.
// Reset, or a dirty schema left by a failed run, rolls every migration back first,
// which destroys stored products.
func Migrate(opts MigrateOptions, logger *slog.Logger) error {
	if opts.Reset {
		logger.Warn("Dropping product schema", "dialect", opts.Dialect)
		if err := withMigrate(opts, down); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	err := withMigrate(opts, (*migrate.Migrate).Up)
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		logger.Warn("Schema is dirty, recreating it", "version", dirty.Version)
		err = withMigrate(opts, func(m *migrate.Migrate) error {
			if err := m.Force(dirty.Version); err != nil {
				return err
			}
			return down(m)
		})
		if err != nil {
			return fmt.Errorf("failed to drop dirty schema: %w", err)
		}
		err = withMigrate(opts, (*migrate.Migrate).Up)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Migrations applied", "dialect", opts.Dialect)
	return nil
}

func down(m *migrate.Migrate) error {
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// withMigrate runs fn on a fresh migrate instance.
func withMigrate(opts MigrateOptions, fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrations, "migrations/"+string(opts.Dialect))
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	switch opts.Dialect {
	case SQLite:
		// closing the instance would close the shared handle, so only the source is released
		driver, err := sqlite.WithInstance(opts.DB, &sqlite.Config{})
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer func() { _ = src.Close() }()
		return fn(m)
	case Postgres:
		m, err := migrate.NewWithSourceInstance("iofs", src, pgxURL(opts.URL))
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer func() { _, _ = m.Close() }()
		return fn(m)
	default:
		_ = src.Close()
		return fmt.Errorf("unsupported dialect: %q", opts.Dialect)
	}
}

// pgxURL switches a postgres:// URL to the scheme registered by the pgx/v5 migrate driver.
func pgxURL(url string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(url, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return url
}

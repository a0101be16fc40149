package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abgdnv/kasir/pkg/config"
	"github.com/abgdnv/kasir/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gopkg.in/natefinch/lumberjack.v2"
	_ "modernc.org/sqlite"
)

// NewLogger creates a JSON slog.Logger that enriches records with request and trace IDs.
// When a log file is configured, output goes to a size rotated file.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logLevel := toLevel(cfg.Level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(logWriter(cfg), loggerOpts)
	return slog.New(logger.NewContextHandler(logHandler))
}

func logWriter(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

// NewDB opens a database/sql handle for the configured driver and pings it.
// SQLite is limited to a single connection since it serializes writers anyway.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	driverName, err := SQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	// Ping the database to ensure the connection is established (fail early if not)
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// SQLDriverName maps a configured driver to its registered database/sql driver name.
func SQLDriverName(driver string) (string, error) {
	switch driver {
	case config.DriverSQLite:
		return "sqlite", nil
	case config.DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("driver %q has no sql backend", driver)
	}
}

// dsn enables foreign keys and a busy timeout for file backed sqlite databases.
func dsn(cfg config.DatabaseConfig) string {
	if cfg.Driver != config.DriverSQLite || strings.Contains(cfg.URL, "?") {
		return cfg.URL
	}
	return cfg.URL + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

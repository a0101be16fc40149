package config

import (
	"strings"
	"time"

	"github.com/abgdnv/kasir/pkg/config"
	"github.com/abgdnv/kasir/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Database   config.DatabaseConfig  `koanf:"database"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	NATS       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Inventory  config.InventoryConfig `koanf:"inventory"`
}

// Defaults are applied below config.yaml, .env and the environment.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                       8080,
		"server.maxHeaderBytes":             1 << 20,
		"server.timeout.read":               5 * time.Second,
		"server.timeout.write":              0,
		"server.timeout.idle":               60 * time.Second,
		"server.timeout.readHeader":         2 * time.Second,
		"database.driver":                   config.DriverSQLite,
		"database.url":                      "kasir.db",
		"database.timeout":                  5 * time.Second,
		"log.level":                         "info",
		"log.maxSizeMB":                     10,
		"log.maxBackups":                    3,
		"log.maxAgeDays":                    28,
		"pprof.addr":                        "localhost:6060",
		"shutdown.timeout":                  config.DefaultShutdownTimeout,
		"nats.timeout":                      5 * time.Second,
		"nats.stream":                       "PRODUCTS",
		"telemetry.metrics.enabled":         true,
		"telemetry.metrics.path":            "/metrics",
		"telemetry.traces.otlphttp.timeout": 5 * time.Second,
		"inventory.searchDebounce":          300 * time.Millisecond,
	}
}

// Load reads the kasir configuration from config.yaml, .env and KASIR_* variables.
func Load(configFile string) (*Config, error) {
	return configloader.Load("kasir", &Config{}, configloader.Options{
		ConfigFile: configFile,
		Defaults:   Defaults(),
	})
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Inventory.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.NATS,
		&c.Telemetry,
		&c.Inventory,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

// LogConfig configures the application logger.
// When File is set, logs are written to a rotating file instead of stdout.
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"maxSizeMB"`
	MaxBackups int    `koanf:"maxBackups"`
	MaxAgeDays int    `koanf:"maxAgeDays"`
}

var logLevels = map[string]struct{}{"": {}, "debug": {}, "info": {}, "warn": {}, "error": {}}

// String returns a string representation of the log configuration.
func (c *LogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Log ---\n")
	b.WriteString(fmt.Sprintf("  level: %s\n", c.Level))
	if c.File != "" {
		b.WriteString(fmt.Sprintf("  file: %s (max %dMB, %d backups, %d days)\n", c.File, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays))
	}
	return b.String()
}

func (c *LogConfig) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.Level)]; !ok {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

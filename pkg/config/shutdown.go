package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultShutdownTimeout covers draining open SSE streams and flushing telemetry.
	DefaultShutdownTimeout = 10 * time.Second
	// MaxShutdownTimeout bounds how long a stop signal may be held up.
	MaxShutdownTimeout = 2 * time.Minute
)

// ShutdownConfig bounds each graceful stop step of the HTTP servers and telemetry providers.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the ShutdownConfig.
func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s (max %s)\n", c.Timeout, MaxShutdownTimeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("shutdown timeout is not configured")
	case c.Timeout > MaxShutdownTimeout:
		return fmt.Errorf("shutdown timeout %s exceeds %s", c.Timeout, MaxShutdownTimeout)
	}
	return nil
}

// Context returns a fresh context for one stop step. It is detached from the
// signal context, which is already cancelled by the time shutdown begins.
func (c *ShutdownConfig) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// InventoryConfig tunes the inventory screen behaviour.
type InventoryConfig struct {
	SearchDebounce time.Duration `koanf:"searchDebounce"`
}

// String returns a string representation of the inventory configuration.
func (c *InventoryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Inventory ---\n")
	b.WriteString(fmt.Sprintf("  searchDebounce: %s\n", c.SearchDebounce))
	return b.String()
}

func (c *InventoryConfig) Validate() error {
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce must not be negative: %s", c.SearchDebounce)
	}
	return nil
}

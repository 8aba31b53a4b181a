package config

import (
	"fmt"
	"os"
)

const EnvRulesOverlayPath = "DOCROUTE_RULES_OVERLAY_PATH"

// RulesConfig holds classifier rulebook settings. OverlayPath, when set,
// names a YAML file of additional format patterns and intent keywords.
type RulesConfig struct {
	OverlayPath string `toml:"overlay_path"`
}

// Finalize applies environment variable overrides and validation.
func (c *RulesConfig) Finalize() error {
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RulesConfig) Merge(overlay *RulesConfig) {
	if overlay.OverlayPath != "" {
		c.OverlayPath = overlay.OverlayPath
	}
}

func (c *RulesConfig) loadEnv() {
	if v := os.Getenv(EnvRulesOverlayPath); v != "" {
		c.OverlayPath = v
	}
}

func (c *RulesConfig) validate() error {
	if c.OverlayPath == "" {
		return nil
	}
	if _, err := os.Stat(c.OverlayPath); err != nil {
		return fmt.Errorf("rules overlay %s: %w", c.OverlayPath, err)
	}
	return nil
}

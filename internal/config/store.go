package config

import (
	"os"
	"strconv"
)

const (
	EnvStoreDir        = "DOCROUTE_STORE_DIR"
	EnvStoreSyncWrites = "DOCROUTE_STORE_SYNC_WRITES"
	EnvStoreInMemory   = "DOCROUTE_STORE_IN_MEMORY"
)

// StoreConfig holds key-value store parameters.
type StoreConfig struct {
	Dir        string `toml:"dir"`
	SyncWrites bool   `toml:"sync_writes"`
	InMemory   bool   `toml:"in_memory"`
}

// Finalize applies defaults and environment variable overrides.
func (c *StoreConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.SyncWrites {
		c.SyncWrites = true
	}
	if overlay.InMemory {
		c.InMemory = true
	}
}

func (c *StoreConfig) loadDefaults() {
	if c.Dir == "" {
		c.Dir = "data/records"
	}
}

func (c *StoreConfig) loadEnv() {
	if v := os.Getenv(EnvStoreDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvStoreSyncWrites); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SyncWrites = b
		}
	}
	if v := os.Getenv(EnvStoreInMemory); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.InMemory = b
		}
	}
}

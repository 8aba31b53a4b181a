package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

const (
	EnvPipelineMaxStoredText = "DOCROUTE_PIPELINE_MAX_STORED_TEXT"
	EnvPipelineBatchWorkers  = "DOCROUTE_PIPELINE_BATCH_WORKERS"
)

// PipelineConfig holds processing parameters.
type PipelineConfig struct {
	MaxStoredTextChars int `toml:"max_stored_text_chars"`
	BatchWorkers       int `toml:"batch_workers"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxStoredTextChars != 0 {
		c.MaxStoredTextChars = overlay.MaxStoredTextChars
	}
	if overlay.BatchWorkers != 0 {
		c.BatchWorkers = overlay.BatchWorkers
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.MaxStoredTextChars == 0 {
		c.MaxStoredTextChars = 500
	}
	if c.BatchWorkers == 0 {
		c.BatchWorkers = runtime.NumCPU()
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineMaxStoredText); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxStoredTextChars = n
		}
	}
	if v := os.Getenv(EnvPipelineBatchWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchWorkers = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxStoredTextChars < 0 {
		return fmt.Errorf("invalid max_stored_text_chars: %d", c.MaxStoredTextChars)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("invalid batch_workers: %d", c.BatchWorkers)
	}
	return nil
}

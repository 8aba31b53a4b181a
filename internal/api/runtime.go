package api

import (
	"github.com/docroute/docroute/internal/config"
	"github.com/docroute/docroute/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Store:     infra.Store,
			Records:   infra.Records,
		},
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}
}

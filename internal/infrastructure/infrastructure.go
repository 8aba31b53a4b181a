// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, the record store backend) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/docroute/docroute/internal/config"
	"github.com/docroute/docroute/internal/records"
	"github.com/docroute/docroute/pkg/kv"
	"github.com/docroute/docroute/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, and the key-value record store.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Store     kv.System
	Records   records.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := kv.NewBadgerStore(&kv.Config{
		Dir:        cfg.Store.Dir,
		SyncWrites: cfg.Store.SyncWrites,
		InMemory:   cfg.Store.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("store init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Store:     store,
		Records:   records.New(store, logger),
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
// The store is closed on shutdown after all modules have stopped.
func (i *Infrastructure) Start() error {
	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Store.Close(); err != nil {
			i.Logger.Error("store close failed", "error", err)
		}
	})
	return nil
}

package agents

import (
	"log/slog"
	"net/http"

	"github.com/docroute/docroute/pkg/handlers"
	"github.com/docroute/docroute/pkg/routes"
)

// Handler exposes the agent registry over HTTP.
type Handler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given registry and logger.
func NewHandler(registry *Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "agents"),
	}
}

// Routes returns the route group definition for agent endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/agents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
		},
	}
}

// List returns the registered agents keyed by the format they serve.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	info := make(map[string]any)
	for _, a := range h.registry.All() {
		info[string(a.Format())] = map[string]any{
			"name":         a.Name(),
			"capabilities": a.Capabilities(),
		}
	}

	handlers.RespondJSON(w, http.StatusOK, info)
}

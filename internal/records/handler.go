package records

import (
	"log/slog"
	"net/http"

	"github.com/docroute/docroute/pkg/handlers"
	"github.com/docroute/docroute/pkg/routes"
)

// Handler provides HTTP endpoints for record inspection.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "records"),
	}
}

// Routes returns the route group definition for record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/pending", Handler: h.Pending},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// Find returns a single processing record by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Pending returns the FIFO pending queue of record ids.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sys.ListPending(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{"pending": ids})
}

package api

import (
	"net/http"

	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/pipeline"
	"github.com/docroute/docroute/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		pipeline.NewHandler(
			domain.Pipeline,
			domain.Extractor,
			runtime.Logger,
			runtime.MaxUploadSize,
		).Routes(),
		domain.Records.Handler().Routes(),
		agents.NewHandler(domain.Agents, runtime.Logger).Routes(),
	)
}

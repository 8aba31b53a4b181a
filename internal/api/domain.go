package api

import (
	"fmt"

	"github.com/docroute/docroute/internal/actions"
	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/internal/config"
	"github.com/docroute/docroute/internal/pdftext"
	"github.com/docroute/docroute/internal/pipeline"
	"github.com/docroute/docroute/internal/records"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifier *classifier.Classifier
	Agents     *agents.Registry
	Records    records.System
	Actions    *actions.Router
	Pipeline   *pipeline.Pipeline
	Extractor  *pdftext.Extractor
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	rules := classifier.DefaultRulebook()
	if cfg.Rules.OverlayPath != "" {
		if err := rules.LoadOverlay(cfg.Rules.OverlayPath); err != nil {
			return nil, fmt.Errorf("load rules overlay: %w", err)
		}
	}

	registry := agents.NewRegistry(
		agents.NewEmailAgent(),
		agents.NewJSONAgent(),
		agents.NewPDFAgent(cfg.Pipeline.MaxStoredTextChars),
	)

	cls := classifier.New(rules)

	services := actions.NewServices(cfg.Services.CRMURL, cfg.Services.RiskURL, runtime.Logger)
	router := actions.NewRouter(services, runtime.Records, runtime.Logger)

	pipe := pipeline.New(
		cls,
		registry,
		runtime.Records,
		router,
		runtime.Logger,
		cfg.Pipeline.BatchWorkers,
	)

	return &Domain{
		Classifier: cls,
		Agents:     registry,
		Records:    runtime.Records,
		Actions:    router,
		Pipeline:   pipe,
		Extractor:  pdftext.New(runtime.Logger),
	}, nil
}

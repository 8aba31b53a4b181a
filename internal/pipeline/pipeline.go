// Package pipeline orchestrates a document's pass through the system:
// classify, dispatch to the matching format agent, route the recommended
// actions, and persist every step on the processing record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docroute/docroute/internal/actions"
	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/internal/records"
)

// Input is one document submitted for processing. FormatHint, when it names
// a valid format, bypasses auto-detection; any other value is ignored.
type Input struct {
	Content    string `json:"content"`
	FormatHint string `json:"document_type,omitempty"`
	Source     string `json:"source,omitempty"`
}

// ProcessedData carries the structured results of a pass.
type ProcessedData struct {
	Classification *classifier.Result         `json:"classification,omitempty"`
	AgentResult    *agents.Result             `json:"agent_result,omitempty"`
	ActionResults  map[string]actions.Outcome `json:"action_results,omitempty"`
	Error          string                     `json:"error,omitempty"`
}

// Envelope is the uniform result of one processing pass.
type Envelope struct {
	Status          string        `json:"status"`
	AgentUsed       string        `json:"agent_used"`
	ProcessedData   ProcessedData `json:"processed_data"`
	Timestamp       time.Time     `json:"timestamp"`
	ConfidenceScore float64       `json:"confidence_score"`
	EntryID         string        `json:"entry_id"`
}

// Pipeline wires the classifier, agent registry, record store, and action
// router into the single processing chain.
type Pipeline struct {
	classifier *classifier.Classifier
	agents     *agents.Registry
	records    records.System
	actions    *actions.Router
	logger     *slog.Logger
	workers    int
}

// New creates a Pipeline. workers bounds batch concurrency; values below 1
// are treated as 1.
func New(
	cls *classifier.Classifier,
	registry *agents.Registry,
	recs records.System,
	router *actions.Router,
	logger *slog.Logger,
	workers int,
) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		classifier: cls,
		agents:     registry,
		records:    recs,
		actions:    router,
		logger:     logger.With("system", "pipeline"),
		workers:    workers,
	}
}

// Process runs one document through the full chain. Input malformation,
// unknown actions, and handler failures all degrade to structured results;
// an error return means the record store itself failed.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Envelope, error) {
	if in.Content == "" {
		return nil, ErrEmptyContent
	}

	rec := &records.ProcessingRecord{
		InputMetadata: inputMetadata(in),
	}

	id, err := p.records.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	env, err := p.run(ctx, in, id)
	if err != nil {
		p.fail(ctx, id, err)
		return &Envelope{
			Status:        "error",
			ProcessedData: ProcessedData{Error: err.Error()},
			Timestamp:     time.Now(),
			EntryID:       id,
		}, nil
	}

	if err := p.records.Complete(ctx, id, records.StatusSuccess); err != nil {
		return nil, fmt.Errorf("complete record: %w", err)
	}

	return env, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, id string) (*Envelope, error) {
	result := p.classify(in)

	if err := p.records.SetClassification(ctx, id, result); err != nil {
		return nil, fmt.Errorf("store classification: %w", err)
	}
	if err := p.records.AppendTrace(ctx, id, fmt.Sprintf(
		"Classified as %s with intent %s", result.Format, result.Intent,
	)); err != nil {
		return nil, fmt.Errorf("trace classification: %w", err)
	}

	agent, ok := p.agents.ForFormat(result.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAgent, result.Format)
	}

	output := agent.Process(in.Content, result)
	if err := p.records.AppendAgentOutput(ctx, id, agent.Name(), *output); err != nil {
		return nil, fmt.Errorf("store agent output: %w", err)
	}
	if err := p.records.AppendTrace(ctx, id, output.Summary()); err != nil {
		return nil, fmt.Errorf("trace agent output: %w", err)
	}

	actx := actions.Context{
		"format":     string(result.Format),
		"intent":     string(result.Intent),
		"confidence": result.Confidence,
		"agent":      agent.Name(),
	}
	outcomes := p.actions.Route(ctx, output.RecommendedActions, actx, id)

	p.logger.Info("document processed",
		"entry_id", id,
		"format", result.Format,
		"intent", result.Intent,
		"agent", agent.Name(),
		"actions", len(outcomes),
	)

	return &Envelope{
		Status:    "success",
		AgentUsed: agent.Name(),
		ProcessedData: ProcessedData{
			Classification: &result,
			AgentResult:    output,
			ActionResults:  outcomes,
		},
		Timestamp:       time.Now(),
		ConfidenceScore: result.Confidence,
		EntryID:         id,
	}, nil
}

func (p *Pipeline) classify(in Input) classifier.Result {
	if in.FormatHint != "" {
		if format, ok := classifier.ParseFormat(in.FormatHint); ok {
			return p.classifier.ClassifyForced(in.Content, format)
		}
		p.logger.Warn("invalid format hint ignored", "hint", in.FormatHint)
	}
	return p.classifier.Classify(in.Content)
}

// fail marks the record as errored, best effort.
func (p *Pipeline) fail(ctx context.Context, id string, cause error) {
	p.logger.Error("pipeline pass failed", "entry_id", id, "error", cause)

	if err := p.records.AppendTrace(ctx, id, "Processing failed: "+cause.Error()); err != nil {
		p.logger.Warn("trace failure", "entry_id", id, "error", err)
	}
	if err := p.records.Complete(ctx, id, records.StatusError); err != nil {
		p.logger.Warn("complete failure", "entry_id", id, "error", err)
	}
}

func inputMetadata(in Input) map[string]any {
	meta := map[string]any{
		"length": len(in.Content),
	}
	if in.Source != "" {
		meta["source"] = in.Source
	}
	if in.FormatHint != "" {
		meta["format_hint"] = in.FormatHint
	}
	return meta
}

// Package records implements the processing record store: the keyed,
// per-document lifecycle trace that threads a single document's processing
// across the classifier, its format agent, and the action router.
package records

import (
	"time"

	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
)

// Status is the record lifecycle state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// ProcessingRecord accumulates one document's processing state. AgentOutputs
// and DecisionTrace grow monotonically during a single pass and are not
// mutated once the pass completes.
type ProcessingRecord struct {
	ID               string                   `json:"id" msgpack:"id"`
	InputMetadata    map[string]any           `json:"input_metadata" msgpack:"input_metadata"`
	Classification   classifier.Result        `json:"classification" msgpack:"classification"`
	AgentOutputs     map[string]agents.Result `json:"agent_outputs" msgpack:"agent_outputs"`
	ActionsTriggered []string                 `json:"actions_triggered" msgpack:"actions_triggered"`
	DecisionTrace    []string                 `json:"decision_trace" msgpack:"decision_trace"`
	Status           Status                   `json:"status" msgpack:"status"`
	CreatedAt        time.Time                `json:"created_at" msgpack:"created_at"`
}

// traceLine formats a timestamped decision-trace entry.
func traceLine(message string) string {
	return time.Now().Format(time.RFC3339) + " " + message
}

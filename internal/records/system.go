package records

import (
	"context"

	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
)

// System defines the public contract for record store operations.
//
// Every mutation reads the full current record, applies the change, and
// writes the full record back: updates to a single id are last-writer-wins
// with no isolation between concurrent passes over the same id. That race
// is an accepted limitation, not a bug to fix here; the pipeline creates a
// fresh id per inbound document, so concurrent passes only share an id if
// a caller arranges it. Updates to different ids never interfere.
type System interface {
	Handler() *Handler

	// Create assigns an id, stamps CreatedAt, sets status to processing,
	// stores the record, and enqueues the id on the pending queue.
	Create(ctx context.Context, rec *ProcessingRecord) (string, error)

	Get(ctx context.Context, id string) (*ProcessingRecord, error)

	SetClassification(ctx context.Context, id string, result classifier.Result) error
	AppendAgentOutput(ctx context.Context, id, agentName string, output agents.Result) error
	AppendAction(ctx context.Context, id, action string) error
	AppendTrace(ctx context.Context, id, message string) error

	// Complete sets the terminal status and removes the id from the
	// pending queue.
	Complete(ctx context.Context, id string, status Status) error

	// ListPending returns the FIFO pending queue: ids in arrival order,
	// one entry per enqueue.
	ListPending(ctx context.Context) ([]string, error)
}

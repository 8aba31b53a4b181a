package records_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/internal/records"
	"github.com/docroute/docroute/pkg/kv"
)

func newSystem(t *testing.T) records.System {
	t.Helper()
	store, err := kv.NewBadgerStore(&kv.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return records.New(store, logger)
}

func TestCreateAssignsIDAndStatus(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	id, err := sys.Create(ctx, &records.ProcessingRecord{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := sys.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, records.StatusProcessing, rec.Status)
	require.False(t, rec.CreatedAt.IsZero())
	require.NotNil(t, rec.AgentOutputs)
	require.NotNil(t, rec.ActionsTriggered)
}

func TestGetMissingRecord(t *testing.T) {
	sys := newSystem(t)

	_, err := sys.Get(context.Background(), "nope")
	require.ErrorIs(t, err, records.ErrNotFound)
}

func TestSequentialAgentOutputsPreserved(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	id, err := sys.Create(ctx, &records.ProcessingRecord{})
	require.NoError(t, err)

	first := agents.Result{AgentName: "EmailAgent", RecommendedActions: []string{"standard_response"}}
	second := agents.Result{AgentName: "JSONAgent", RecommendedActions: []string{"process_normally"}}

	require.NoError(t, sys.AppendAgentOutput(ctx, id, "EmailAgent", first))
	require.NoError(t, sys.AppendAgentOutput(ctx, id, "JSONAgent", second))

	rec, err := sys.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, rec.AgentOutputs, 2)
	require.Equal(t, "EmailAgent", rec.AgentOutputs["EmailAgent"].AgentName)
	require.Equal(t, "JSONAgent", rec.AgentOutputs["JSONAgent"].AgentName)
}

func TestClassificationRoundTrip(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	id, err := sys.Create(ctx, &records.ProcessingRecord{})
	require.NoError(t, err)

	result := classifier.Result{
		Format:     classifier.FormatEmail,
		Intent:     classifier.IntentComplaint,
		Confidence: 0.75,
		Metadata:   map[string]any{"word_count": int64(42)},
	}
	require.NoError(t, sys.SetClassification(ctx, id, result))

	rec, err := sys.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, classifier.FormatEmail, rec.Classification.Format)
	require.Equal(t, classifier.IntentComplaint, rec.Classification.Intent)
	require.InDelta(t, 0.75, rec.Classification.Confidence, 1e-9)
}

func TestActionAndTraceAppend(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	id, err := sys.Create(ctx, &records.ProcessingRecord{})
	require.NoError(t, err)

	require.NoError(t, sys.AppendAction(ctx, id, "escalate_to_manager: escalated"))
	require.NoError(t, sys.AppendAction(ctx, id, "log_and_track: logged"))
	require.NoError(t, sys.AppendTrace(ctx, id, "Classified as email with intent complaint"))

	rec, err := sys.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{
		"escalate_to_manager: escalated",
		"log_and_track: logged",
	}, rec.ActionsTriggered)
	require.Len(t, rec.DecisionTrace, 1)
	require.Contains(t, rec.DecisionTrace[0], "Classified as email with intent complaint")
}

func TestPendingQueueFIFO(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		id, err := sys.Create(ctx, &records.ProcessingRecord{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	pending, err := sys.ListPending(ctx)
	require.NoError(t, err)
	require.Equal(t, ids, pending)

	require.NoError(t, sys.Complete(ctx, ids[1], records.StatusSuccess))

	pending, err = sys.ListPending(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{ids[0], ids[2]}, pending)

	rec, err := sys.Get(ctx, ids[1])
	require.NoError(t, err)
	require.Equal(t, records.StatusSuccess, rec.Status)
}

func TestCompleteWithError(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	id, err := sys.Create(ctx, &records.ProcessingRecord{})
	require.NoError(t, err)

	require.NoError(t, sys.Complete(ctx, id, records.StatusError))

	rec, err := sys.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, records.StatusError, rec.Status)

	pending, err := sys.ListPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/docroute/docroute/internal/actions"
	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/internal/pipeline"
	"github.com/docroute/docroute/internal/records"
	"github.com/docroute/docroute/pkg/kv"
)

func newPipeline(t *testing.T, workers int) (*pipeline.Pipeline, records.System) {
	t.Helper()
	store, err := kv.NewBadgerStore(&kv.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recs := records.New(store, logger)
	services := actions.NewServices("https://crm.test", "https://risk.test", logger)
	router := actions.NewRouter(services, recs, logger)
	cls := classifier.New(classifier.DefaultRulebook())
	registry := agents.Defaults()

	return pipeline.New(cls, registry, recs, router, logger, workers), recs
}

func TestProcessEmailEndToEnd(t *testing.T) {
	pipe, recs := newPipeline(t, 1)
	ctx := context.Background()

	env, err := pipe.Process(ctx, pipeline.Input{
		Content: "From: angry@customer.com\nSubject: complaint about my order\n\nThis is unacceptable, I demand a refund immediately.",
		Source:  "inbox",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if env.Status != "success" {
		t.Errorf("status: got %s, want success", env.Status)
	}
	if env.AgentUsed != "EmailAgent" {
		t.Errorf("agent_used: got %s, want EmailAgent", env.AgentUsed)
	}
	if env.EntryID == "" {
		t.Fatal("entry_id missing")
	}
	if env.ConfidenceScore < 0 || env.ConfidenceScore > 1 {
		t.Errorf("confidence_score out of range: %f", env.ConfidenceScore)
	}
	if env.ProcessedData.Classification.Format != classifier.FormatEmail {
		t.Errorf("format: got %s, want email", env.ProcessedData.Classification.Format)
	}
	if len(env.ProcessedData.ActionResults) == 0 {
		t.Error("expected action results")
	}

	rec, err := recs.Get(ctx, env.EntryID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Status != records.StatusSuccess {
		t.Errorf("record status: got %s, want success", rec.Status)
	}
	if _, ok := rec.AgentOutputs["EmailAgent"]; !ok {
		t.Errorf("agent outputs: got %v", rec.AgentOutputs)
	}
	if len(rec.ActionsTriggered) == 0 {
		t.Error("expected triggered actions on the record")
	}
	if len(rec.DecisionTrace) < 2 {
		t.Fatalf("decision trace: got %v", rec.DecisionTrace)
	}
	if !strings.Contains(rec.DecisionTrace[0], "Classified as email with intent complaint") {
		t.Errorf("first trace line: got %q", rec.DecisionTrace[0])
	}
	if rec.InputMetadata["source"] != "inbox" {
		t.Errorf("input metadata: got %v", rec.InputMetadata)
	}

	pending, err := recs.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending queue: got %v, want empty", pending)
	}
}

func TestProcessEmptyContent(t *testing.T) {
	pipe, _ := newPipeline(t, 1)

	_, err := pipe.Process(context.Background(), pipeline.Input{})
	if err != pipeline.ErrEmptyContent {
		t.Errorf("error: got %v, want ErrEmptyContent", err)
	}
}

func TestProcessMalformedJSONStillSucceeds(t *testing.T) {
	pipe, _ := newPipeline(t, 1)

	env, err := pipe.Process(context.Background(), pipeline.Input{Content: "{not json"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if env.Status != "success" {
		t.Errorf("status: got %s, want success", env.Status)
	}
	if env.AgentUsed != "JSONAgent" {
		t.Errorf("agent_used: got %s, want JSONAgent", env.AgentUsed)
	}
	if env.ProcessedData.AgentResult.JSON.WebhookType != "invalid" {
		t.Errorf("webhook_type: got %s", env.ProcessedData.AgentResult.JSON.WebhookType)
	}
	if _, ok := env.ProcessedData.ActionResults["log_error"]; !ok {
		t.Errorf("action results: got %v, want log_error", env.ProcessedData.ActionResults)
	}
	if _, ok := env.ProcessedData.ActionResults["alert_admin"]; !ok {
		t.Errorf("action results: got %v, want alert_admin", env.ProcessedData.ActionResults)
	}
}

func TestFormatHintForcesAgent(t *testing.T) {
	pipe, _ := newPipeline(t, 1)

	env, err := pipe.Process(context.Background(), pipeline.Input{
		Content:    "plain text that would otherwise classify as pdf",
		FormatHint: "json",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if env.AgentUsed != "JSONAgent" {
		t.Errorf("agent_used: got %s, want JSONAgent", env.AgentUsed)
	}
}

func TestInvalidFormatHintIgnored(t *testing.T) {
	pipe, _ := newPipeline(t, 1)

	env, err := pipe.Process(context.Background(), pipeline.Input{
		Content:    `{"webhook": "x", "payload": {}}`,
		FormatHint: "parchment",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if env.ProcessedData.Classification.Format != classifier.FormatJSON {
		t.Errorf("format: got %s, want json", env.ProcessedData.Classification.Format)
	}
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	pipe, _ := newPipeline(t, 4)

	inputs := []pipeline.Input{
		{Content: "From: a@b.com\nSubject: quote request for pricing\n\nPlease send a quotation."},
		{Content: `{"transaction_id":"t1","amount":50,"currency":"USD","status":"ok"}`},
		{Content: "Invoice\nTotal: $99.00"},
	}

	results, err := pipe.ProcessBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}

	wantAgents := []string{"EmailAgent", "JSONAgent", "PDFAgent"}
	seen := map[string]bool{}
	for i, env := range results {
		if env == nil {
			t.Fatalf("result %d missing", i)
		}
		if env.Status != "success" {
			t.Errorf("result %d status: got %s", i, env.Status)
		}
		if env.AgentUsed != wantAgents[i] {
			t.Errorf("result %d agent: got %s, want %s", i, env.AgentUsed, wantAgents[i])
		}
		if seen[env.EntryID] {
			t.Errorf("duplicate entry id %s", env.EntryID)
		}
		seen[env.EntryID] = true
	}
}

func TestProcessBatchEmptyDocumentFails(t *testing.T) {
	pipe, _ := newPipeline(t, 2)

	_, err := pipe.ProcessBatch(context.Background(), []pipeline.Input{
		{Content: "From: a@b.com\nSubject: hi\n\nhello"},
		{Content: ""},
	})
	if err == nil {
		t.Fatal("expected error for empty document")
	}
}

package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/pkg/kv"
)

const (
	recordKeyPrefix = "record:"
	pendingQueueKey = "queue:pending"
)

type repo struct {
	kv     kv.System
	logger *slog.Logger
}

// New creates a record store implementing the System interface over the
// given key-value backend.
func New(store kv.System, logger *slog.Logger) System {
	return &repo{
		kv:     store,
		logger: logger.With("system", "records"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func recordKey(id string) []byte {
	return []byte(recordKeyPrefix + id)
}

func (r *repo) Create(ctx context.Context, rec *ProcessingRecord) (string, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.Status = StatusProcessing
	if rec.InputMetadata == nil {
		rec.InputMetadata = map[string]any{}
	}
	if rec.AgentOutputs == nil {
		rec.AgentOutputs = map[string]agents.Result{}
	}
	if rec.ActionsTriggered == nil {
		rec.ActionsTriggered = []string{}
	}
	if rec.DecisionTrace == nil {
		rec.DecisionTrace = []string{}
	}

	if err := r.put(rec); err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}

	if err := r.enqueue(rec.ID); err != nil {
		return "", fmt.Errorf("enqueue record: %w", err)
	}

	r.logger.Info("record created", "id", rec.ID)
	return rec.ID, nil
}

func (r *repo) Get(ctx context.Context, id string) (*ProcessingRecord, error) {
	data, err := r.kv.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	var rec ProcessingRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}

	return &rec, nil
}

func (r *repo) SetClassification(ctx context.Context, id string, result classifier.Result) error {
	return r.mutate(id, func(rec *ProcessingRecord) {
		rec.Classification = result
	})
}

func (r *repo) AppendAgentOutput(ctx context.Context, id, agentName string, output agents.Result) error {
	return r.mutate(id, func(rec *ProcessingRecord) {
		rec.AgentOutputs[agentName] = output
		rec.DecisionTrace = append(rec.DecisionTrace, traceLine(agentName+" output recorded"))
	})
}

func (r *repo) AppendAction(ctx context.Context, id, action string) error {
	return r.mutate(id, func(rec *ProcessingRecord) {
		rec.ActionsTriggered = append(rec.ActionsTriggered, action)
	})
}

func (r *repo) AppendTrace(ctx context.Context, id, message string) error {
	return r.mutate(id, func(rec *ProcessingRecord) {
		rec.DecisionTrace = append(rec.DecisionTrace, traceLine(message))
	})
}

func (r *repo) Complete(ctx context.Context, id string, status Status) error {
	if err := r.mutate(id, func(rec *ProcessingRecord) {
		rec.Status = status
	}); err != nil {
		return err
	}

	if err := r.dequeue(id); err != nil {
		return fmt.Errorf("dequeue record: %w", err)
	}

	r.logger.Info("record completed", "id", id, "status", status)
	return nil
}

func (r *repo) ListPending(ctx context.Context) ([]string, error) {
	return r.queue()
}

// mutate applies a read-modify-write cycle to one record. There is no lock
// across the cycle; see the System contract for the resulting semantics.
func (r *repo) mutate(id string, apply func(*ProcessingRecord)) error {
	rec, err := r.Get(context.Background(), id)
	if err != nil {
		return err
	}

	apply(rec)

	if err := r.put(rec); err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return nil
}

func (r *repo) put(rec *ProcessingRecord) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return r.kv.Set(recordKey(rec.ID), data)
}

func (r *repo) queue() ([]string, error) {
	data, err := r.kv.Get([]byte(pendingQueueKey))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("get pending queue: %w", err)
	}

	var ids []string
	if err := msgpack.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode pending queue: %w", err)
	}
	return ids, nil
}

func (r *repo) putQueue(ids []string) error {
	data, err := msgpack.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode pending queue: %w", err)
	}
	return r.kv.Set([]byte(pendingQueueKey), data)
}

func (r *repo) enqueue(id string) error {
	ids, err := r.queue()
	if err != nil {
		return err
	}
	return r.putQueue(append(ids, id))
}

func (r *repo) dequeue(id string) error {
	ids, err := r.queue()
	if err != nil {
		return err
	}

	for i, candidate := range ids {
		if candidate == id {
			return r.putQueue(append(ids[:i], ids[i+1:]...))
		}
	}
	return nil
}

package adjudication

import (
	"context"

	"github.com/duelogic/duelogic/internal/models"
)

// EvaluationStore persists finished response evaluations. Writes are
// best-effort from the core's perspective: a failure is logged and the
// in-progress turn continues.
type EvaluationStore interface {
	AppendEvaluation(ctx context.Context, record models.EvaluationRecord) error
}

// InterruptionStore persists executed interruptions and serves aggregate
// statistics for a debate.
type InterruptionStore interface {
	AppendInterruption(ctx context.Context, record models.InterruptionRecord) error
	MarkResponded(ctx context.Context, id string) error
	StatsByDebate(ctx context.Context, debateID string) (models.InterruptStats, error)
}

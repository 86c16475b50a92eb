package llm

import (
	"context"

	"github.com/duelogic/duelogic/internal/models"
)

// JudgeClient is the single operation both adjudication orchestrators need
// from a backing model: role-tagged messages in, raw completion text out.
// Callers own prompt construction and output parsing; the client knows
// nothing about evaluation or interruption shapes.
type JudgeClient interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelogic/duelogic/internal/models"
)

// The repositories require a live Postgres for their query paths; what is
// testable here is construction and the unconfigured-pool guards every
// operation carries.

func TestNewEvaluationRepository_NilLogger(t *testing.T) {
	repo := NewEvaluationRepository(nil, nil)
	require.NotNil(t, repo)
	assert.NotNil(t, repo.log)
}

func TestEvaluationRepository_NilPoolErrors(t *testing.T) {
	repo := NewEvaluationRepository(nil, nil)
	ctx := context.Background()

	err := repo.CreateTable(ctx)
	assert.ErrorContains(t, err, "not configured")

	err = repo.AppendEvaluation(ctx, models.EvaluationRecord{DebateID: "debate-1"})
	assert.ErrorContains(t, err, "not configured")

	_, err = repo.ListByDebate(ctx, "debate-1")
	assert.ErrorContains(t, err, "not configured")

	_, err = repo.CountByDebate(ctx, "debate-1")
	assert.ErrorContains(t, err, "not configured")
}

func TestNewInterruptionRepository_NilLogger(t *testing.T) {
	repo := NewInterruptionRepository(nil, nil)
	require.NotNil(t, repo)
	assert.NotNil(t, repo.log)
}

func TestInterruptionRepository_NilPoolErrors(t *testing.T) {
	repo := NewInterruptionRepository(nil, nil)
	ctx := context.Background()

	err := repo.CreateTable(ctx)
	assert.ErrorContains(t, err, "not configured")

	err = repo.AppendInterruption(ctx, models.InterruptionRecord{DebateID: "debate-1"})
	assert.ErrorContains(t, err, "not configured")

	err = repo.MarkResponded(ctx, "missing-id")
	assert.ErrorContains(t, err, "not configured")

	_, err = repo.ListByDebate(ctx, "debate-1")
	assert.ErrorContains(t, err, "not configured")

	stats, err := repo.StatsByDebate(ctx, "debate-1")
	assert.ErrorContains(t, err, "not configured")
	assert.NotNil(t, stats.ByChair, "stats maps stay usable even on error")
}

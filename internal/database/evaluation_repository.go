package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/duelogic/duelogic/internal/models"
)

// EvaluationRepository manages durable storage of response evaluations.
type EvaluationRepository struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(pool *pgxpool.Pool, log *logrus.Logger) *EvaluationRepository {
	if log == nil {
		log = logrus.New()
	}
	return &EvaluationRepository{
		pool: pool,
		log:  log,
	}
}

// CreateTable creates the response_evaluations table if it doesn't exist.
func (r *EvaluationRepository) CreateTable(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool is not configured")
	}

	query := `
		CREATE TABLE IF NOT EXISTS response_evaluations (
			id VARCHAR(255) PRIMARY KEY,
			debate_id VARCHAR(255) NOT NULL,
			response_id VARCHAR(255) NOT NULL,
			chair_position VARCHAR(64) NOT NULL,
			evaluation JSONB NOT NULL,
			method VARCHAR(16) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_response_evaluations_debate_id ON response_evaluations(debate_id);
		CREATE INDEX IF NOT EXISTS idx_response_evaluations_chair ON response_evaluations(chair_position);
		CREATE INDEX IF NOT EXISTS idx_response_evaluations_created_at ON response_evaluations(created_at);
	`

	_, err := r.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create response_evaluations table: %w", err)
	}

	r.log.Info("Response evaluations table created/verified")
	return nil
}

// AppendEvaluation adds one evaluation for a (debate, response) pair.
func (r *EvaluationRepository) AppendEvaluation(ctx context.Context, record models.EvaluationRecord) error {
	if r.pool == nil {
		return fmt.Errorf("database pool is not configured")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	evaluationJSON, err := json.Marshal(record.Evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	query := `
		INSERT INTO response_evaluations (id, debate_id, response_id, chair_position, evaluation, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.DebateID,
		record.ResponseID,
		record.ChairPosition,
		evaluationJSON,
		string(record.Method),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"debate_id":      record.DebateID,
		"response_id":    record.ResponseID,
		"chair_position": record.ChairPosition,
		"method":         record.Method,
	}).Debug("Evaluation persisted")

	return nil
}

// ListByDebate returns all evaluations recorded for a debate, oldest first.
func (r *EvaluationRepository) ListByDebate(ctx context.Context, debateID string) ([]models.EvaluationRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool is not configured")
	}

	query := `
		SELECT id, debate_id, response_id, chair_position, evaluation, method, created_at
		FROM response_evaluations
		WHERE debate_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var records []models.EvaluationRecord
	for rows.Next() {
		var record models.EvaluationRecord
		var evaluationJSON []byte
		var method string
		if err := rows.Scan(
			&record.ID,
			&record.DebateID,
			&record.ResponseID,
			&record.ChairPosition,
			&evaluationJSON,
			&method,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation row: %w", err)
		}
		if err := json.Unmarshal(evaluationJSON, &record.Evaluation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation %s: %w", record.ID, err)
		}
		record.Method = models.EvaluationMethod(method)
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountByDebate returns the number of evaluations recorded for a debate.
func (r *EvaluationRepository) CountByDebate(ctx context.Context, debateID string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database pool is not configured")
	}

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM response_evaluations WHERE debate_id = $1`,
		debateID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}

	return count, nil
}

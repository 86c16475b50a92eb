package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/duelogic/duelogic/internal/models"
)

// InterruptionRepository manages durable storage of chair interruption
// events.
type InterruptionRepository struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewInterruptionRepository creates a new interruption repository.
func NewInterruptionRepository(pool *pgxpool.Pool, log *logrus.Logger) *InterruptionRepository {
	if log == nil {
		log = logrus.New()
	}
	return &InterruptionRepository{
		pool: pool,
		log:  log,
	}
}

// CreateTable creates the chair_interruptions table if it doesn't exist.
func (r *InterruptionRepository) CreateTable(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool is not configured")
	}

	query := `
		CREATE TABLE IF NOT EXISTS chair_interruptions (
			id VARCHAR(255) PRIMARY KEY,
			debate_id VARCHAR(255) NOT NULL,
			interrupting_chair VARCHAR(64) NOT NULL,
			interrupted_chair VARCHAR(64) NOT NULL,
			reason VARCHAR(64) NOT NULL,
			trigger_content TEXT,
			urgency DECIMAL(4,3) NOT NULL DEFAULT 0,
			responded BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_chair_interruptions_debate_id ON chair_interruptions(debate_id);
		CREATE INDEX IF NOT EXISTS idx_chair_interruptions_chair ON chair_interruptions(interrupting_chair);
		CREATE INDEX IF NOT EXISTS idx_chair_interruptions_reason ON chair_interruptions(reason);
	`

	_, err := r.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create chair_interruptions table: %w", err)
	}

	r.log.Info("Chair interruptions table created/verified")
	return nil
}

// AppendInterruption adds one interruption record.
func (r *InterruptionRepository) AppendInterruption(ctx context.Context, record models.InterruptionRecord) error {
	if r.pool == nil {
		return fmt.Errorf("database pool is not configured")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO chair_interruptions (id, debate_id, interrupting_chair, interrupted_chair, reason, trigger_content, urgency, responded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.DebateID,
		record.InterruptingChair,
		record.InterruptedChair,
		string(record.Reason),
		record.TriggerContent,
		record.Urgency,
		record.Responded,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interruption: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"debate_id":    record.DebateID,
		"interrupting": record.InterruptingChair,
		"interrupted":  record.InterruptedChair,
		"reason":       record.Reason,
	}).Debug("Interruption persisted")

	return nil
}

// MarkResponded marks an interruption as responded to.
func (r *InterruptionRepository) MarkResponded(ctx context.Context, id string) error {
	if r.pool == nil {
		return fmt.Errorf("database pool is not configured")
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE chair_interruptions SET responded = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark interruption responded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("interruption not found: %s", id)
	}

	return nil
}

// StatsByDebate aggregates interruption counts for a debate. A debate with
// no recorded interruptions yields zero totals and empty maps.
func (r *InterruptionRepository) StatsByDebate(ctx context.Context, debateID string) (models.InterruptStats, error) {
	stats := models.NewInterruptStats()

	if r.pool == nil {
		return stats, fmt.Errorf("database pool is not configured")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT interrupting_chair, reason, COUNT(*)
		FROM chair_interruptions
		WHERE debate_id = $1
		GROUP BY interrupting_chair, reason
	`, debateID)
	if err != nil {
		return stats, fmt.Errorf("failed to query interruption stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chair, reason string
		var count int
		if err := rows.Scan(&chair, &reason, &count); err != nil {
			return stats, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByChair[chair] += count
		stats.ByReason[models.TriggerReason(reason)] += count
		stats.TotalInterrupts += count
	}

	return stats, rows.Err()
}

// ListByDebate returns all interruptions recorded for a debate, oldest
// first.
func (r *InterruptionRepository) ListByDebate(ctx context.Context, debateID string) ([]models.InterruptionRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool is not configured")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, debate_id, interrupting_chair, interrupted_chair, reason, trigger_content, urgency, responded, created_at
		FROM chair_interruptions
		WHERE debate_id = $1
		ORDER BY created_at ASC
	`, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interruptions: %w", err)
	}
	defer rows.Close()

	var records []models.InterruptionRecord
	for rows.Next() {
		var record models.InterruptionRecord
		var reason string
		if err := rows.Scan(
			&record.ID,
			&record.DebateID,
			&record.InterruptingChair,
			&record.InterruptedChair,
			&reason,
			&record.TriggerContent,
			&record.Urgency,
			&record.Responded,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interruption row: %w", err)
		}
		record.Reason = models.TriggerReason(reason)
		records = append(records, record)
	}

	return records, rows.Err()
}

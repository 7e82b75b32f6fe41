package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"baitlab/internal/domain/models"
)

// EngagementRecord is one archived engagement row.
type EngagementRecord struct {
	SessionID       string            `json:"session_id"`
	CreatedAt       time.Time         `json:"created_at"`
	ClosedAt        time.Time         `json:"closed_at"`
	ScamDetected    bool              `json:"scam_detected"`
	ScamType        string            `json:"scam_type"`
	ScamScore       float64           `json:"scam_score"`
	FinalState      string            `json:"final_state"`
	EndedReason     string            `json:"ended_reason"`
	TotalMessages   int               `json:"total_messages"`
	DurationSeconds int               `json:"duration_seconds"`
	ArtifactCount   int               `json:"artifact_count"`
	Intel           *models.Intel     `json:"intel"`
	History         []models.Message  `json:"history"`
	AgentNotes      string            `json:"agent_notes"`
}

// EngagementStats holds aggregate archive statistics.
type EngagementStats struct {
	TotalSessions  int64   `json:"total_sessions"`
	ScamsDetected  int64   `json:"scams_detected"`
	TotalArtifacts int64   `json:"total_artifacts"`
	AvgMessages    float64 `json:"avg_messages"`
	TodayClosed    int64   `json:"today_closed"`
}

// EngagementRepository archives terminated sessions to PostgreSQL.
// Redis holds live sessions; this table is the durable record that
// survives session TTL expiry.
type EngagementRepository struct {
	pool *pgxpool.Pool
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(pool *pgxpool.Pool) *EngagementRepository {
	return &EngagementRepository{pool: pool}
}

const createEngagementsTable = `
CREATE TABLE IF NOT EXISTS engagements (
	session_id       TEXT PRIMARY KEY,
	created_at       TIMESTAMPTZ NOT NULL,
	closed_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	scam_detected    BOOLEAN NOT NULL DEFAULT false,
	scam_type        TEXT NOT NULL DEFAULT 'unknown',
	scam_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	final_state      TEXT NOT NULL,
	ended_reason     TEXT NOT NULL DEFAULT '',
	total_messages   INTEGER NOT NULL DEFAULT 0,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	artifact_count   INTEGER NOT NULL DEFAULT 0,
	intel            JSONB NOT NULL DEFAULT '{}'::jsonb,
	history          JSONB NOT NULL DEFAULT '[]'::jsonb,
	agent_notes      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_engagements_closed_at ON engagements (closed_at DESC);
CREATE INDEX IF NOT EXISTS idx_engagements_scam_type ON engagements (scam_type);
`

// Migrate creates the archive table if it does not exist.
func (r *EngagementRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createEngagementsTable); err != nil {
		return fmt.Errorf("failed to migrate engagements table: %w", err)
	}
	return nil
}

// Archive stores a terminated session. Calling it twice for the same
// session updates the existing row.
func (r *EngagementRepository) Archive(ctx context.Context, session *models.Session, scamDetected bool, artifactCount int, agentNotes string) error {
	intelJSON, err := json.Marshal(session.Intel)
	if err != nil {
		return fmt.Errorf("failed to marshal intel: %w", err)
	}
	historyJSON, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	const query = `
		INSERT INTO engagements (
			session_id, created_at, closed_at, scam_detected, scam_type,
			scam_score, final_state, ended_reason, total_messages,
			duration_seconds, artifact_count, intel, history, agent_notes
		) VALUES ($1, $2, now(), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id) DO UPDATE SET
			closed_at        = now(),
			scam_detected    = EXCLUDED.scam_detected,
			scam_type        = EXCLUDED.scam_type,
			scam_score       = EXCLUDED.scam_score,
			final_state      = EXCLUDED.final_state,
			ended_reason     = EXCLUDED.ended_reason,
			total_messages   = EXCLUDED.total_messages,
			duration_seconds = EXCLUDED.duration_seconds,
			artifact_count   = EXCLUDED.artifact_count,
			intel            = EXCLUDED.intel,
			history          = EXCLUDED.history,
			agent_notes      = EXCLUDED.agent_notes`

	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.CreatedAt,
		scamDetected,
		string(session.ScamType),
		session.ScamScore,
		string(session.State),
		session.EndedReason,
		session.Messages,
		int(session.EngagementDuration().Seconds()),
		artifactCount,
		intelJSON,
		historyJSON,
		agentNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to archive engagement: %w", err)
	}
	return nil
}

// Get fetches one archived engagement by session ID.
func (r *EngagementRepository) Get(ctx context.Context, sessionID string) (*EngagementRecord, error) {
	const query = `
		SELECT session_id, created_at, closed_at, scam_detected, scam_type,
		       scam_score, final_state, ended_reason, total_messages,
		       duration_seconds, artifact_count, intel, history, agent_notes
		FROM engagements
		WHERE session_id = $1`

	return scanEngagement(r.pool.QueryRow(ctx, query, sessionID))
}

// List returns the most recently closed engagements.
func (r *EngagementRepository) List(ctx context.Context, limit, offset int) ([]*EngagementRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const query = `
		SELECT session_id, created_at, closed_at, scam_detected, scam_type,
		       scam_score, final_state, ended_reason, total_messages,
		       duration_seconds, artifact_count, intel, history, agent_notes
		FROM engagements
		ORDER BY closed_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer rows.Close()

	var records []*EngagementRecord
	for rows.Next() {
		record, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns aggregate archive statistics.
func (r *EngagementRepository) Stats(ctx context.Context) (*EngagementStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE scam_detected),
			COALESCE(SUM(artifact_count), 0),
			COALESCE(AVG(total_messages), 0),
			COUNT(*) FILTER (WHERE closed_at >= date_trunc('day', now()))
		FROM engagements`

	var stats EngagementStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalSessions,
		&stats.ScamsDetected,
		&stats.TotalArtifacts,
		&stats.AvgMessages,
		&stats.TodayClosed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement stats: %w", err)
	}
	return &stats, nil
}

func scanEngagement(row pgx.Row) (*EngagementRecord, error) {
	var (
		record      EngagementRecord
		intelJSON   []byte
		historyJSON []byte
	)
	err := row.Scan(
		&record.SessionID,
		&record.CreatedAt,
		&record.ClosedAt,
		&record.ScamDetected,
		&record.ScamType,
		&record.ScamScore,
		&record.FinalState,
		&record.EndedReason,
		&record.TotalMessages,
		&record.DurationSeconds,
		&record.ArtifactCount,
		&intelJSON,
		&historyJSON,
		&record.AgentNotes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan engagement: %w", err)
	}

	record.Intel = models.NewIntel()
	if err := json.Unmarshal(intelJSON, record.Intel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intel: %w", err)
	}
	record.Intel.Backfill()
	if err := json.Unmarshal(historyJSON, &record.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &record, nil
}

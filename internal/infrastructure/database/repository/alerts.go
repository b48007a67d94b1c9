package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

const alertSchema = `
	CREATE TABLE IF NOT EXISTS alerts (
		id              TEXT PRIMARY KEY,
		channel         TEXT NOT NULL,
		threat_level    TEXT NOT NULL,
		risk_score      DOUBLE PRECISION NOT NULL,
		description     TEXT NOT NULL,
		recommendations TEXT[] NOT NULL DEFAULT '{}',
		features        JSONB NOT NULL DEFAULT '{}',
		user_id         TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_channel ON alerts (channel);
	CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts (created_at DESC)`

// AlertRepository archives generated alerts so dashboards survive restarts
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// EnsureSchema creates the alerts table and indexes if they do not exist
func (r *AlertRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, alertSchema); err != nil {
		return fmt.Errorf("failed to ensure alerts schema: %w", err)
	}
	return nil
}

// Insert archives a single alert. Replays of an already archived id are ignored.
func (r *AlertRepository) Insert(ctx context.Context, a *models.Alert) error {
	features, err := json.Marshal(a.Features)
	if err != nil {
		return fmt.Errorf("failed to encode alert features: %w", err)
	}

	query := `
		INSERT INTO alerts (
			id, channel, threat_level, risk_score, description,
			recommendations, features, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		a.ID, a.Channel, a.ThreatLevel, a.RiskScore, a.Description,
		a.Recommendations, features, a.UserID, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// Recent retrieves the most recent alerts in chronological order, matching
// the shape of the in-memory history window
func (r *AlertRepository) Recent(ctx context.Context, limit int) ([]*models.Alert, error) {
	query := `
		SELECT id, channel, threat_level, risk_score, description,
			   recommendations, features, user_id, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	// Newest-first from the query, oldest-first for consumers
	for i, j := 0, len(alerts)-1; i < j; i, j = i+1, j-1 {
		alerts[i], alerts[j] = alerts[j], alerts[i]
	}

	return alerts, nil
}

// CountByChannel returns archived alert totals grouped by channel
func (r *AlertRepository) CountByChannel(ctx context.Context) (map[models.Channel]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel, COUNT(*)
		FROM alerts
		GROUP BY channel
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts by channel: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Channel]int64)
	for rows.Next() {
		var (
			channel models.Channel
			count   int64
		)
		if err := rows.Scan(&channel, &count); err != nil {
			return nil, fmt.Errorf("failed to scan channel count: %w", err)
		}
		counts[channel] = count
	}

	return counts, nil
}

func scanAlert(rows pgx.Rows) (*models.Alert, error) {
	var (
		a        models.Alert
		features []byte
	)

	err := rows.Scan(
		&a.ID, &a.Channel, &a.ThreatLevel, &a.RiskScore, &a.Description,
		&a.Recommendations, &features, &a.UserID, &a.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	if len(features) > 0 {
		if err := json.Unmarshal(features, &a.Features); err != nil {
			return nil, fmt.Errorf("failed to decode alert features: %w", err)
		}
	}

	return &a, nil
}

// ArchiveSink adapts the repository to the engine's alert fan-out. Archive
// failures are logged and never block analysis.
type ArchiveSink struct {
	repo *AlertRepository
	log  *logger.Logger
}

// NewArchiveSink creates an alert sink backed by the archive repository
func NewArchiveSink(repo *AlertRepository, log *logger.Logger) *ArchiveSink {
	return &ArchiveSink{
		repo: repo,
		log:  log.WithComponent("alert-archive"),
	}
}

// PublishAlert archives the alert
func (s *ArchiveSink) PublishAlert(ctx context.Context, alert *models.Alert) {
	if err := s.repo.Insert(ctx, alert); err != nil {
		s.log.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to archive alert")
	}
}

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finpulse/finpulse/internal/domain/health"
	"github.com/finpulse/finpulse/internal/domain/recommend"
	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	db transactions.DB
}

func NewPostgresStore(db transactions.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetBudgetLimits returns the user's configured per-category limits in minor
// units. A user with no budgets gets an empty map, not an error.
func (s *PostgresStore) GetBudgetLimits(ctx context.Context, userID uuid.UUID) (map[transactions.Category]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, limit_minor
		FROM budget_limits
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget limits: %w", err)
	}
	defer rows.Close()

	limits := make(map[transactions.Category]int64)
	for rows.Next() {
		var category string
		var limitMinor int64
		if err := rows.Scan(&category, &limitMinor); err != nil {
			return nil, fmt.Errorf("failed to scan budget limit: %w", err)
		}
		limits[transactions.Category(category)] = limitMinor
	}
	return limits, rows.Err()
}

// LatestHealthScore returns the most recent composite score, nil when the
// user has no scoring history yet.
func (s *PostgresStore) LatestHealthScore(ctx context.Context, userID uuid.UUID) (*int, error) {
	var score int
	err := s.db.QueryRow(ctx, `
		SELECT score
		FROM health_scores
		WHERE user_id = $1
		ORDER BY as_of DESC
		LIMIT 1`, userID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query health score: %w", err)
	}
	return &score, nil
}

// SaveHealthScore appends one scoring row. History is append-only so score
// deltas can be computed on the next run.
func (s *PostgresStore) SaveHealthScore(ctx context.Context, userID uuid.UUID, score health.HealthScore, asOf time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO health_scores (user_id, score, as_of)
		VALUES ($1, $2, $3)`, userID, score.Current, asOf)
	if err != nil {
		return fmt.Errorf("failed to save health score: %w", err)
	}
	return nil
}

// SaveRecommendations replaces the user's open recommendations with the
// current run's set. Rows the user already acted on are kept.
func (s *PostgresStore) SaveRecommendations(ctx context.Context, userID uuid.UUID, recs []recommend.Recommendation) error {
	if _, err := s.db.Exec(ctx, `
		DELETE FROM recommendations
		WHERE user_id = $1 AND NOT applied AND NOT dismissed`, userID); err != nil {
		return fmt.Errorf("failed to clear open recommendations: %w", err)
	}

	for _, rec := range recs {
		_, err := s.db.Exec(ctx, `
			INSERT INTO recommendations (id, user_id, domain, title, description, impact_text, confidence, applied, dismissed, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE, $8)
			ON CONFLICT (id) DO NOTHING`,
			rec.ID, userID, string(rec.Domain), rec.Title, rec.Description, rec.ImpactText, string(rec.Confidence), rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save recommendation %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Package postgres implements the persistence contracts on PostgreSQL via
// sqlx. Score writes run behind a circuit breaker so a down archive never
// stalls scoring passes.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/persistence"
)

// scoreRow is the flat table shape; the component breakdown and flags ride
// in JSONB columns.
type scoreRow struct {
	ID             string    `db:"id"`
	TokenID        string    `db:"token_id"`
	Composite      float64   `db:"composite"`
	Components     []byte    `db:"components"`
	Confidence     string    `db:"confidence"`
	ConfidenceBand float64   `db:"confidence_band"`
	Flags          []byte    `db:"flags"`
	RiskTier       string    `db:"risk_tier"`
	ScoredAt       time.Time `db:"scored_at"`
}

// ScoreStore is the PostgreSQL persistence.ScoreStore.
type ScoreStore struct {
	db      *sqlx.DB
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewScoreStore wraps an open connection. The breaker opens after repeated
// failed writes and drops to log-only until the archive recovers.
func NewScoreStore(db *sqlx.DB, timeout time.Duration) *ScoreStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "score-archive",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("score archive breaker state change")
		},
	})
	return &ScoreStore{db: db, timeout: timeout, breaker: breaker}
}

// Insert appends one score record. An open breaker is reported as an error;
// callers decide whether to treat archiving as best-effort.
func (s *ScoreStore) Insert(ctx context.Context, score persistence.StoredScore) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	components, err := json.Marshal(score.Record.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}
	flags, err := json.Marshal(score.Record.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		query := `
			INSERT INTO scores (id, token_id, composite, components, confidence, confidence_band, flags, risk_tier, scored_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, execErr := s.db.ExecContext(ctx, query,
			score.ID, score.Record.TokenID, score.Record.Composite,
			components, string(score.Record.Confidence), score.Record.ConfidenceBand,
			flags, string(score.Record.RiskTier), score.ScoredAt)
		return nil, execErr
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("duplicate score record %s: %w", score.ID, err)
		}
		return fmt.Errorf("insert score for %s: %w", score.Record.TokenID, err)
	}
	return nil
}

// Latest returns the most recent record for a token.
func (s *ScoreStore) Latest(ctx context.Context, tokenID string) (persistence.StoredScore, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row scoreRow
	query := `
		SELECT id, token_id, composite, components, confidence, confidence_band, flags, risk_tier, scored_at
		FROM scores
		WHERE token_id = $1
		ORDER BY scored_at DESC
		LIMIT 1`
	if err := s.db.GetContext(ctx, &row, query, tokenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.StoredScore{}, persistence.ErrNotFound
		}
		return persistence.StoredScore{}, fmt.Errorf("latest score for %s: %w", tokenID, err)
	}
	return rowToStored(row)
}

// Leaderboard returns the highest-scoring latest record per token.
func (s *ScoreStore) Leaderboard(ctx context.Context, limit int) ([]persistence.StoredScore, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// DISTINCT ON forces token_id-first ordering, so the latest-per-token
	// pick happens in a subquery and the score ordering outside it.
	var rows []scoreRow
	query := `
		SELECT id, token_id, composite, components, confidence, confidence_band, flags, risk_tier, scored_at
		FROM (
			SELECT DISTINCT ON (token_id)
				id, token_id, composite, components, confidence, confidence_band, flags, risk_tier, scored_at
			FROM scores
			ORDER BY token_id, scored_at DESC
		) latest
		ORDER BY composite DESC
		LIMIT $1`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("score leaderboard: %w", err)
	}

	out := make([]persistence.StoredScore, 0, len(rows))
	for _, row := range rows {
		stored, err := rowToStored(row)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func rowToStored(row scoreRow) (persistence.StoredScore, error) {
	var components domain.ComponentScores
	if err := json.Unmarshal(row.Components, &components); err != nil {
		return persistence.StoredScore{}, fmt.Errorf("decode components for %s: %w", row.TokenID, err)
	}
	var flags []string
	if len(row.Flags) > 0 {
		if err := json.Unmarshal(row.Flags, &flags); err != nil {
			return persistence.StoredScore{}, fmt.Errorf("decode flags for %s: %w", row.TokenID, err)
		}
	}

	stored := persistence.StoredScore{
		ScoredAt: row.ScoredAt,
		Record: domain.ScoreRecord{
			TokenID:        row.TokenID,
			Composite:      row.Composite,
			Components:     components,
			Confidence:     domain.ConfidenceLevel(row.Confidence),
			ConfidenceBand: row.ConfidenceBand,
			Flags:          flags,
			RiskTier:       domain.RiskTier(row.RiskTier),
		},
	}
	if err := stored.ID.UnmarshalText([]byte(row.ID)); err != nil {
		return persistence.StoredScore{}, fmt.Errorf("decode score id %q: %w", row.ID, err)
	}
	return stored, nil
}

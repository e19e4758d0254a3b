package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/moonscan/tokenrank/internal/persistence"
)

// TradeStore reads closed-trade history for reputation recompute.
type TradeStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewTradeStore wraps an open connection.
func NewTradeStore(db *sqlx.DB, timeout time.Duration) *TradeStore {
	return &TradeStore{db: db, timeout: timeout}
}

type tradeRow struct {
	ActorID     string    `db:"actor_id"`
	TokenID     string    `db:"token_id"`
	ReturnPct   float64   `db:"return_pct"`
	HoldSeconds int64     `db:"hold_seconds"`
	ClosedAt    time.Time `db:"closed_at"`
}

// ClosedTrades returns the full closed-trade history. Reputation stats are
// always a full recompute over this set, never an incremental update.
func (s *TradeStore) ClosedTrades(ctx context.Context) ([]persistence.ClosedTrade, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []tradeRow
	query := `
		SELECT actor_id, token_id, return_pct, hold_seconds, closed_at
		FROM closed_trades
		ORDER BY closed_at`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}

	out := make([]persistence.ClosedTrade, 0, len(rows))
	for _, row := range rows {
		out = append(out, persistence.ClosedTrade{
			ActorID:      row.ActorID,
			TokenID:      row.TokenID,
			ReturnPct:    row.ReturnPct,
			HoldDuration: time.Duration(row.HoldSeconds) * time.Second,
			ClosedAt:     row.ClosedAt,
		})
	}
	return out, nil
}

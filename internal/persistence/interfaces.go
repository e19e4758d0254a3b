// Package persistence defines the storage contracts around the scoring core:
// an append-only archive of score records and the closed-trade history that
// feeds reputation recompute.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/moonscan/tokenrank/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("persistence: not found")

// StoredScore wraps an immutable ScoreRecord with the provenance the engine
// deliberately leaves out: an id and the time the pass ran.
type StoredScore struct {
	ID       uuid.UUID          `json:"id"`
	ScoredAt time.Time          `json:"scored_at"`
	Record   domain.ScoreRecord `json:"record"`
}

// ScoreStore archives score records. Records are append-only: scoring a
// token again inserts a new row rather than updating the old one.
type ScoreStore interface {
	Insert(ctx context.Context, score StoredScore) error
	Latest(ctx context.Context, tokenID string) (StoredScore, error)
	Leaderboard(ctx context.Context, limit int) ([]StoredScore, error)
}

// ClosedTrade is one completed round trip by a tracked actor, the raw
// material of reputation stats.
type ClosedTrade struct {
	ActorID      string
	TokenID      string
	ReturnPct    float64 // fractional: 0.5 = +50%
	HoldDuration time.Duration
	ClosedAt     time.Time
}

// TradeStore reads the closed-trade history for reputation recompute.
type TradeStore interface {
	ClosedTrades(ctx context.Context) ([]ClosedTrade, error)
}

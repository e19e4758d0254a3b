package domain

import "time"

// WalletActivity is one observed trade by a tracked wallet on one asset.
// The upstream activity feed has already resolved the address-to-actor
// mapping, role, and attribution confidence; the engine never looks up
// addresses itself.
type WalletActivity struct {
	ActorID    string                `json:"actor_id"`
	Wallet     string                `json:"wallet"`
	Role       WalletRole            `json:"role"`
	Confidence AttributionConfidence `json:"confidence"`
	Stats      ReputationStats       `json:"stats"` // snapshot at observation time
	AmountSOL  float64               `json:"amount_sol"`
	ObservedAt time.Time             `json:"observed_at"`
}

// ReputationStats is an actor's accumulated record across closed trades.
// Recomputed in full on a fixed interval and cached with a TTL; never
// partially updated. WinRate is undefined (TotalTrades == 0) until the actor
// has at least one closed trade.
type ReputationStats struct {
	ActorID         string        `json:"actor_id"`
	TotalTrades     int           `json:"total_trades"`
	WinRate         float64       `json:"win_rate"` // [0,1]
	AvgReturnPct    float64       `json:"avg_return_pct"`
	AvgHoldDuration time.Duration `json:"avg_hold_duration"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// HasHistory reports whether any closed trades back this snapshot.
func (s ReputationStats) HasHistory() bool {
	return s.TotalTrades > 0
}

// Package reputation classifies tracked actors into discrete trust tiers
// from their historical trade statistics. Tiering gates which wallets the
// conviction model trusts at all.
package reputation

import (
	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
)

// Reason explains why a classification landed where it did, so callers can
// distinguish "not enough history" from "history says no".
type Reason string

const (
	ReasonQualified          Reason = "qualified"
	ReasonInsufficientSample Reason = "insufficient_sample"
	ReasonShortHold          Reason = "short_hold" // front-runner pattern
	ReasonLowWinRate         Reason = "low_win_rate"
)

// Classification is the full result of evaluating one actor's stats.
type Classification struct {
	Tier   domain.ReputationTier
	Reason Reason
}

// Classifier assigns reputation tiers. Stateless and safe for concurrent use;
// the same stats always yield the same tier.
type Classifier struct {
	cfg config.ReputationConfig
}

// NewClassifier builds a classifier from injected thresholds.
func NewClassifier(cfg config.ReputationConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Evaluate applies the sample-size gate, the front-runner gate, then the
// descending win-rate thresholds.
//
// The front-runner gate exists because an actor with a high win rate but
// near-zero holding time is presumed to be detecting others' trades rather
// than taking genuine directional risk. Such actors are never trusted, no
// matter the win rate.
func (c *Classifier) Evaluate(stats domain.ReputationStats) Classification {
	if stats.TotalTrades < c.cfg.MinTrades {
		return Classification{Tier: domain.TierUnproven, Reason: ReasonInsufficientSample}
	}
	if stats.AvgHoldDuration < c.cfg.MinHoldDuration() {
		return Classification{Tier: domain.TierUnproven, Reason: ReasonShortHold}
	}

	switch {
	case stats.WinRate >= c.cfg.STierWinRate:
		return Classification{Tier: domain.TierS, Reason: ReasonQualified}
	case stats.WinRate >= c.cfg.ATierWinRate:
		return Classification{Tier: domain.TierA, Reason: ReasonQualified}
	case stats.WinRate >= c.cfg.BTierWinRate:
		return Classification{Tier: domain.TierB, Reason: ReasonQualified}
	default:
		return Classification{Tier: domain.TierUnproven, Reason: ReasonLowWinRate}
	}
}

// Classify returns just the tier for callers that don't need the reason.
func (c *Classifier) Classify(stats domain.ReputationStats) domain.ReputationTier {
	return c.Evaluate(stats).Tier
}

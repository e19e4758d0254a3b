// Package conviction converts tracked-wallet trades into the per-role
// conviction sub-scores of the composite. A trade's influence is the product
// of its role weight, attribution-confidence weight, reputation-tier weight,
// and the actor's historical accuracy.
package conviction

import (
	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/reputation"
)

// WeightCalculator scores individual wallet trades. Stateless; safe for
// concurrent use across scoring passes.
type WeightCalculator struct {
	cfg        config.ConvictionConfig
	classifier *reputation.Classifier
}

// NewWeightCalculator builds a calculator over injected constants and the
// tier classifier that gates actor trust.
func NewWeightCalculator(cfg config.ConvictionConfig, classifier *reputation.Classifier) *WeightCalculator {
	return &WeightCalculator{cfg: cfg, classifier: classifier}
}

// Weight returns the non-negative conviction weight for one trade:
//
//	roleWeight × confidenceWeight × tierWeight × accuracyWeight
//
// Unproven actors weigh zero, so nothing downstream ever acts on an
// untrusted wallet regardless of the other factors.
func (w *WeightCalculator) Weight(a domain.WalletActivity) float64 {
	tier := w.classifier.Classify(a.Stats)
	return w.roleWeight(a.Role) *
		w.confidenceWeight(a.Role, a.Confidence) *
		w.tierWeight(tier) *
		w.accuracyWeight(a.Stats)
}

// MeetsMinimum is the eligibility gate, kept separate from the numeric
// weight. Primary-role trades always pass; secondary-role trades pass only
// at or above the configured attribution floor, because low-confidence
// attributions are too noisy to act on even when weighted low.
func (w *WeightCalculator) MeetsMinimum(a domain.WalletActivity) bool {
	if a.Role == domain.RolePrimary {
		return true
	}
	return a.Confidence >= w.cfg.MinSecondaryLevel()
}

// SizeMultiplier scales a trade's contribution by its size, capped so no
// single outsized trade dominates:
//
//	min(cap, size / sizeNormalization)
func (w *WeightCalculator) SizeMultiplier(a domain.WalletActivity) float64 {
	if a.AmountSOL <= 0 {
		return 0
	}
	mult := a.AmountSOL / w.cfg.SizeNormalization
	if mult > w.cfg.SizeMultiplierCap {
		return w.cfg.SizeMultiplierCap
	}
	return mult
}

func (w *WeightCalculator) roleWeight(role domain.WalletRole) float64 {
	switch role {
	case domain.RolePrimary:
		return w.cfg.RoleWeightPrimary
	case domain.RoleSecondary:
		return w.cfg.RoleWeightSecondary
	default:
		return 0
	}
}

// confidenceWeight is 1.0 for primary wallets; secondary wallets decay with
// attribution confidence. The switch is exhaustive over the ordinal so a new
// level cannot silently inherit a weight.
func (w *WeightCalculator) confidenceWeight(role domain.WalletRole, c domain.AttributionConfidence) float64 {
	if role == domain.RolePrimary {
		return 1.0
	}
	cw := w.cfg.ConfidenceWeights
	switch c {
	case domain.ConfidenceVeryHigh:
		return cw.VeryHigh
	case domain.ConfidenceHigh:
		return cw.High
	case domain.ConfidenceMedium:
		return cw.Medium
	case domain.ConfidenceLow:
		return cw.Low
	case domain.ConfidenceVeryLow:
		return cw.VeryLow
	default:
		return 0
	}
}

func (w *WeightCalculator) tierWeight(t domain.ReputationTier) float64 {
	switch t {
	case domain.TierS:
		return w.cfg.TierWeightS
	case domain.TierA:
		return w.cfg.TierWeightA
	case domain.TierB:
		return w.cfg.TierWeightB
	case domain.TierUnproven:
		return 0
	default:
		return 0
	}
}

// accuracyWeight is the actor's win rate once the sample is large enough to
// mean anything, otherwise a neutral default so thin histories neither
// inflate nor bury a trade.
func (w *WeightCalculator) accuracyWeight(stats domain.ReputationStats) float64 {
	if stats.TotalTrades >= w.cfg.AccuracyMinTrades {
		return stats.WinRate
	}
	return w.cfg.AccuracyNeutral
}

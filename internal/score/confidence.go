package score

import (
	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/conviction"
	"github.com/moonscan/tokenrank/internal/domain"
)

// confidenceState accumulates the confidence derivation. Confidence only
// ever moves downward within a pass and the band only ever widens; flags are
// append-only evidence.
type confidenceState struct {
	level domain.ConfidenceLevel
	band  float64
	flags []string
}

func (s *confidenceState) downgrade(to domain.ConfidenceLevel) {
	if rankConfidence(to) < rankConfidence(s.level) {
		s.level = to
	}
}

func (s *confidenceState) stepDown() {
	switch s.level {
	case domain.ConfidenceLevelHigh:
		s.level = domain.ConfidenceLevelMedium
	case domain.ConfidenceLevelMedium:
		s.level = domain.ConfidenceLevelLow
	}
}

func (s *confidenceState) widen(band float64) {
	if band > s.band {
		s.band = band
	}
}

func (s *confidenceState) flag(name string) {
	s.flags = append(s.flags, name)
}

func rankConfidence(l domain.ConfidenceLevel) int {
	switch l {
	case domain.ConfidenceLevelHigh:
		return 2
	case domain.ConfidenceLevelMedium:
		return 1
	default:
		return 0
	}
}

// determineConfidence derives the confidence level, numeric band, and
// advisory flags for one pass. Starts at HIGH ±base and applies the
// downgrade checks in a fixed order; each triggered condition appends its
// flag and may tighten confidence, never loosen it.
func determineConfidence(cfg config.ConfidenceConfig, m domain.MetricsBundle,
	activities []domain.WalletActivity, primary, secondary conviction.Result) confidenceState {

	s := confidenceState{level: domain.ConfidenceLevelHigh, band: cfg.BaseBand}

	// Very young tokens have thin, volatile metrics behind every component.
	if m.OnChain.AgeMinutes < cfg.NewTokenMaxAgeMinutes {
		s.flag(domain.FlagNewToken)
		s.downgrade(domain.ConfidenceLevelMedium)
		s.widen(cfg.NewTokenBand)
	}

	if m.OnChain.LiquidityUSD < cfg.MinLiquidityUSD {
		s.flag(domain.FlagLowLiquidity)
		s.downgrade(domain.ConfidenceLevelMedium)
		s.widen(cfg.LowLiquidityBand)
	}

	if len(activities) == 1 {
		s.flag(domain.FlagSingleSource)
		s.widen(cfg.SingleSourceBand)
	}

	// All conviction evidence from probabilistic attributions, none from a
	// confirmed wallet: the strongest component rests on the weakest links.
	if primary.NoActivity() && !secondary.NoActivity() {
		s.flag(domain.FlagSecondaryOnly)
		s.stepDown()
	}

	return s
}

// riskTier maps the composite score through fixed floors to the five-level
// ordinal, independent of confidence.
func riskTier(cfg config.RiskTierConfig, composite float64) domain.RiskTier {
	switch {
	case composite >= cfg.VeryLowMin:
		return domain.RiskVeryLow
	case composite >= cfg.LowMin:
		return domain.RiskLow
	case composite >= cfg.MediumMin:
		return domain.RiskMedium
	case composite >= cfg.HighMin:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// Package score implements the multi-factor scoring engine: five component
// scorers, two conviction aggregations, composite weighting, confidence
// derivation, and risk tiering.
package score

import (
	"strings"

	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// OnChainHealth scores liquidity and holder structure on [0,100]. Healthy
// volume/mcap turnover, broad holder distribution, low top-10 concentration,
// and authentic (non-wash) volume each contribute a capped share.
func OnChainHealth(cfg config.OnChainConfig, m domain.MetricsBundle) float64 {
	oc := m.OnChain

	var volume float64
	if cfg.IdealVolumeToMcap > 0 {
		volume = clamp(oc.VolumeToMcap/cfg.IdealVolumeToMcap, 0, 1) * cfg.VolumeWeight
	}

	var holders float64
	if cfg.IdealHolderCount > 0 {
		holders = clamp(float64(oc.HolderCount)/float64(cfg.IdealHolderCount), 0, 1) * cfg.HolderWeight
	}

	// Full credit at or below the concentration ceiling, linear penalty as
	// the top-10 share climbs toward total ownership.
	concentration := cfg.ConcentrationWeight
	if oc.Top10HoldingsPct > cfg.ConcentrationCeilingPct {
		span := 100.0 - cfg.ConcentrationCeilingPct
		if span > 0 {
			excess := (oc.Top10HoldingsPct - cfg.ConcentrationCeilingPct) / span
			concentration = clamp(1-excess, 0, 1) * cfg.ConcentrationWeight
		} else {
			concentration = 0
		}
	}

	authenticity := clamp(m.VolumeAuthenticity/100.0, 0, 1) * cfg.AuthenticityWeight

	return clamp(volume+holders+concentration+authenticity, 0, 100)
}

// SocialMomentum scores social traction on [0,100]. Sentiment is remapped
// from [-1,1] to [0,1] before weighting so bearish chatter drags rather than
// inverts the component.
func SocialMomentum(cfg config.SocialConfig, m domain.MetricsBundle) float64 {
	s := m.Social

	var velocity float64
	if cfg.IdealMentionVelocity > 0 {
		velocity = clamp(s.MentionVelocity/cfg.IdealMentionVelocity, 0, 1) * cfg.VelocityWeight
	}
	engagement := clamp(s.EngagementQuality, 0, 1) * cfg.EngagementWeight
	authenticity := clamp(s.AccountAuthenticity, 0, 1) * cfg.AuthenticityWeight
	sentiment := clamp((s.Sentiment+1)/2, 0, 1) * cfg.SentimentWeight

	return clamp(velocity+engagement+authenticity+sentiment, 0, 100)
}

// ScamRiskInverse scores contract/deployer safety on [0,100]; higher is
// safer. A reject verdict is an absolute veto, not a weighted penalty. A
// flag verdict caps the score even when the arithmetic would exceed the cap.
func ScamRiskInverse(cfg config.ScamConfig, m domain.MetricsBundle) float64 {
	sf := m.ScamFilter
	if sf.Verdict == domain.VerdictReject {
		return 0
	}

	s := 100.0
	s -= float64(len(sf.Flags)) * cfg.PerFlagPenalty
	if sf.MintAuthorityActive {
		s -= cfg.MintAuthorityPenalty
	}
	if sf.FreezeAuthorityActive {
		s -= cfg.FreezeAuthorityPenalty
	}
	if sf.DevRugHistory {
		s -= cfg.RugHistoryPenalty
	}
	if sf.BundledSupplyPct > cfg.BundledSupplyMaxPct {
		s -= cfg.BundledSupplyPenalty
	}
	if sf.DevSoldToExchange {
		s -= cfg.DevExchangePenalty
	}

	if sf.Verdict == domain.VerdictFlag && s > cfg.FlagVerdictCap {
		s = cfg.FlagVerdictCap
	}
	return clamp(s, 0, 100)
}

// NarrativeBonus is a tri-level step bonus: the full bonus when the token's
// narrative or name matches a current-meta theme, a smaller one when any KOL
// mention exists without a theme match, a minimal one otherwise.
func NarrativeBonus(cfg config.NarrativeConfig, tokenID string, m domain.MetricsBundle) float64 {
	haystack := strings.ToLower(m.Social.Narrative + " " + tokenID)
	for _, theme := range cfg.Themes {
		if theme != "" && strings.Contains(haystack, strings.ToLower(theme)) {
			return cfg.ThemeBonus
		}
	}
	if len(m.Social.KOLMentions) > 0 {
		return cfg.KOLBonus
	}
	return cfg.BaseBonus
}

// TimingBonus rewards early discovery with a stepwise age decay: the first
// matching step wins, assets older than every step earn zero.
func TimingBonus(cfg config.TimingConfig, m domain.MetricsBundle) float64 {
	age := m.OnChain.AgeMinutes
	for _, step := range cfg.Steps {
		if age < step.MaxAgeMinutes {
			return step.Bonus
		}
	}
	return 0
}

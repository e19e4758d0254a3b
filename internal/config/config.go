// Package config holds the tunable scoring configuration. Every weight,
// ideal, and threshold the engine uses lives here so that retuning never
// touches algorithm code and multiple configurations can run side by side.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moonscan/tokenrank/internal/domain"
)

// ComponentWeights are the convex weights applied to the five 0-100
// components. They must sum to 1.0 within Validation tolerance; the two
// bonuses are added unweighted on top.
type ComponentWeights struct {
	OnChainHealth       float64 `yaml:"on_chain_health"`
	SocialMomentum      float64 `yaml:"social_momentum"`
	PrimaryConviction   float64 `yaml:"primary_conviction"`
	SecondaryConviction float64 `yaml:"secondary_conviction"`
	ScamRiskInverse     float64 `yaml:"scam_risk_inverse"`
}

// Sum returns the total of the five component weights.
func (w ComponentWeights) Sum() float64 {
	return w.OnChainHealth + w.SocialMomentum + w.PrimaryConviction +
		w.SecondaryConviction + w.ScamRiskInverse
}

// OnChainConfig tunes the on-chain health scorer.
type OnChainConfig struct {
	IdealVolumeToMcap       float64 `yaml:"ideal_volume_to_mcap"`      // ratio at which volume contribution maxes out
	IdealHolderCount        int     `yaml:"ideal_holder_count"`        // holders at which holder contribution maxes out
	ConcentrationCeilingPct float64 `yaml:"concentration_ceiling_pct"` // top-10 share above which penalties begin
	VolumeWeight            float64 `yaml:"volume_weight"`
	HolderWeight            float64 `yaml:"holder_weight"`
	ConcentrationWeight     float64 `yaml:"concentration_weight"`
	AuthenticityWeight      float64 `yaml:"authenticity_weight"`
}

// SocialConfig tunes the social momentum scorer.
type SocialConfig struct {
	IdealMentionVelocity float64 `yaml:"ideal_mention_velocity"` // mentions/hour at which velocity maxes out
	VelocityWeight       float64 `yaml:"velocity_weight"`
	EngagementWeight     float64 `yaml:"engagement_weight"`
	AuthenticityWeight   float64 `yaml:"authenticity_weight"`
	SentimentWeight      float64 `yaml:"sentiment_weight"`
}

// ScamConfig tunes the scam-risk-inverse scorer. All penalties subtract from
// a starting 100; a reject verdict bypasses arithmetic entirely.
type ScamConfig struct {
	PerFlagPenalty         float64 `yaml:"per_flag_penalty"`
	MintAuthorityPenalty   float64 `yaml:"mint_authority_penalty"`
	FreezeAuthorityPenalty float64 `yaml:"freeze_authority_penalty"`
	RugHistoryPenalty      float64 `yaml:"rug_history_penalty"`
	BundledSupplyPenalty   float64 `yaml:"bundled_supply_penalty"`
	BundledSupplyMaxPct    float64 `yaml:"bundled_supply_max_pct"`
	DevExchangePenalty     float64 `yaml:"dev_exchange_penalty"`
	FlagVerdictCap         float64 `yaml:"flag_verdict_cap"` // ceiling when verdict is "flag"
}

// NarrativeConfig tunes the tri-level narrative bonus.
type NarrativeConfig struct {
	Themes     []string `yaml:"themes"` // current-meta themes, matched case-insensitively
	ThemeBonus float64  `yaml:"theme_bonus"`
	KOLBonus   float64  `yaml:"kol_bonus"`
	BaseBonus  float64  `yaml:"base_bonus"`
}

// TimingStep is one step of the age-decay timing bonus: assets younger than
// MaxAgeMinutes earn Bonus. Steps are evaluated in order.
type TimingStep struct {
	MaxAgeMinutes float64 `yaml:"max_age_minutes"`
	Bonus         float64 `yaml:"bonus"`
}

// TimingConfig tunes the discovery-timing bonus.
type TimingConfig struct {
	Steps []TimingStep `yaml:"steps"`
}

// ConvictionConfig tunes the wallet-signal weighting model.
type ConvictionConfig struct {
	RoleWeightPrimary      float64           `yaml:"role_weight_primary"`
	RoleWeightSecondary    float64           `yaml:"role_weight_secondary"`
	TierWeightS            float64           `yaml:"tier_weight_s"`
	TierWeightA            float64           `yaml:"tier_weight_a"`
	TierWeightB            float64           `yaml:"tier_weight_b"`
	ConfidenceWeights      ConfidenceWeights `yaml:"confidence_weights"`
	MinSecondaryConfidence string            `yaml:"min_secondary_confidence"` // ordinal label, e.g. "medium"
	AccuracyMinTrades      int               `yaml:"accuracy_min_trades"`
	AccuracyNeutral        float64           `yaml:"accuracy_neutral"`
	SizeNormalization      float64           `yaml:"size_normalization"` // native units per 1.0x size multiplier
	SizeMultiplierCap      float64           `yaml:"size_multiplier_cap"`
	SaturationMultiplier   float64           `yaml:"saturation_multiplier"` // weighted sum times this, capped at 100
}

// ConfidenceWeights maps secondary-wallet attribution confidence to a
// multiplicative weight. Primary wallets always weigh 1.0.
type ConfidenceWeights struct {
	VeryHigh float64 `yaml:"very_high"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
	Low      float64 `yaml:"low"`
	VeryLow  float64 `yaml:"very_low"`
}

// ReputationConfig tunes the tier classifier.
type ReputationConfig struct {
	MinTrades              int     `yaml:"min_trades"`
	MinHoldSeconds         int     `yaml:"min_hold_seconds"` // front-runner gate
	STierWinRate           float64 `yaml:"s_tier_win_rate"`
	ATierWinRate           float64 `yaml:"a_tier_win_rate"`
	BTierWinRate           float64 `yaml:"b_tier_win_rate"`
	WinReturnThreshold     float64 `yaml:"win_return_threshold"` // fractional return counting as a win
	CacheTTLSeconds        int     `yaml:"cache_ttl_seconds"`
	RefreshIntervalSeconds int     `yaml:"refresh_interval_seconds"`
}

// MinHoldDuration is the front-runner gate as a duration.
func (r ReputationConfig) MinHoldDuration() time.Duration {
	return time.Duration(r.MinHoldSeconds) * time.Second
}

// CacheTTL bounds how long a stats snapshot may serve reads.
func (r ReputationConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// RefreshInterval is the full-recompute cadence.
func (r ReputationConfig) RefreshInterval() time.Duration {
	return time.Duration(r.RefreshIntervalSeconds) * time.Second
}

// ConfidenceConfig tunes the confidence/flag derivation.
type ConfidenceConfig struct {
	NewTokenMaxAgeMinutes float64 `yaml:"new_token_max_age_minutes"`
	MinLiquidityUSD       float64 `yaml:"min_liquidity_usd"`
	BaseBand              float64 `yaml:"base_band"`
	NewTokenBand          float64 `yaml:"new_token_band"`
	LowLiquidityBand      float64 `yaml:"low_liquidity_band"`
	SingleSourceBand      float64 `yaml:"single_source_band"`
}

// RiskTierConfig maps composite-score floors to risk tiers, highest first.
type RiskTierConfig struct {
	VeryLowMin float64 `yaml:"very_low_min"`
	LowMin     float64 `yaml:"low_min"`
	MediumMin  float64 `yaml:"medium_min"`
	HighMin    float64 `yaml:"high_min"`
}

// ScoringConfig is the full injected configuration for one engine instance.
type ScoringConfig struct {
	Weights    ComponentWeights `yaml:"weights"`
	OnChain    OnChainConfig    `yaml:"on_chain"`
	Social     SocialConfig     `yaml:"social"`
	Scam       ScamConfig       `yaml:"scam"`
	Narrative  NarrativeConfig  `yaml:"narrative"`
	Timing     TimingConfig     `yaml:"timing"`
	Conviction ConvictionConfig `yaml:"conviction"`
	Reputation ReputationConfig `yaml:"reputation"`
	Confidence ConfidenceConfig `yaml:"confidence"`
	RiskTiers  RiskTierConfig   `yaml:"risk_tiers"`
	Validation struct {
		WeightSumTolerance float64 `yaml:"weight_sum_tolerance"`
	} `yaml:"validation"`
}

// Default returns the baseline configuration. The numbers are tuned defaults,
// not invariants; deployments override them via YAML.
func Default() *ScoringConfig {
	cfg := &ScoringConfig{
		Weights: ComponentWeights{
			OnChainHealth:       0.20,
			SocialMomentum:      0.15,
			PrimaryConviction:   0.25,
			SecondaryConviction: 0.15,
			ScamRiskInverse:     0.25,
		},
		OnChain: OnChainConfig{
			IdealVolumeToMcap:       0.30,
			IdealHolderCount:        1000,
			ConcentrationCeilingPct: 30.0,
			VolumeWeight:            30.0,
			HolderWeight:            25.0,
			ConcentrationWeight:     20.0,
			AuthenticityWeight:      25.0,
		},
		Social: SocialConfig{
			IdealMentionVelocity: 120.0,
			VelocityWeight:       35.0,
			EngagementWeight:     25.0,
			AuthenticityWeight:   20.0,
			SentimentWeight:      20.0,
		},
		Scam: ScamConfig{
			PerFlagPenalty:         10.0,
			MintAuthorityPenalty:   25.0,
			FreezeAuthorityPenalty: 25.0,
			RugHistoryPenalty:      30.0,
			BundledSupplyPenalty:   20.0,
			BundledSupplyMaxPct:    30.0,
			DevExchangePenalty:     20.0,
			FlagVerdictCap:         70.0,
		},
		Narrative: NarrativeConfig{
			Themes:     []string{"ai", "agent", "dog", "cat", "pepe", "trump", "quant"},
			ThemeBonus: 30.0,
			KOLBonus:   15.0,
			BaseBonus:  5.0,
		},
		Timing: TimingConfig{
			Steps: []TimingStep{
				{MaxAgeMinutes: 60, Bonus: 20},
				{MaxAgeMinutes: 180, Bonus: 15},
				{MaxAgeMinutes: 360, Bonus: 10},
				{MaxAgeMinutes: 720, Bonus: 5},
			},
		},
		Conviction: ConvictionConfig{
			RoleWeightPrimary:   1.0,
			RoleWeightSecondary: 0.6,
			TierWeightS:         1.0,
			TierWeightA:         0.8,
			TierWeightB:         0.6,
			ConfidenceWeights: ConfidenceWeights{
				VeryHigh: 0.95,
				High:     0.80,
				Medium:   0.50,
				Low:      0.25,
				VeryLow:  0.10,
			},
			MinSecondaryConfidence: "medium",
			AccuracyMinTrades:      5,
			AccuracyNeutral:        0.5,
			SizeNormalization:      10.0,
			SizeMultiplierCap:      2.0,
			SaturationMultiplier:   50.0,
		},
		Reputation: ReputationConfig{
			MinTrades:              10,
			MinHoldSeconds:         900, // 15m front-runner floor
			STierWinRate:           0.75,
			ATierWinRate:           0.60,
			BTierWinRate:           0.45,
			WinReturnThreshold:     0.50,
			CacheTTLSeconds:        1800,
			RefreshIntervalSeconds: 900,
		},
		Confidence: ConfidenceConfig{
			NewTokenMaxAgeMinutes: 120.0,
			MinLiquidityUSD:       10000.0,
			BaseBand:              5.0,
			NewTokenBand:          15.0,
			LowLiquidityBand:      10.0,
			SingleSourceBand:      10.0,
		},
		RiskTiers: RiskTierConfig{
			VeryLowMin: 80.0,
			LowMin:     65.0,
			MediumMin:  50.0,
			HighMin:    35.0,
		},
	}
	cfg.Validation.WeightSumTolerance = 0.001
	return cfg
}

// Load reads a YAML configuration file over the defaults, so partial files
// only override what they name.
func Load(path string) (*ScoringConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse scoring config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// MinSecondaryLevel resolves the configured minimum attribution ordinal for
// secondary-wallet eligibility.
func (c *ConvictionConfig) MinSecondaryLevel() domain.AttributionConfidence {
	return domain.ParseAttributionConfidence(c.MinSecondaryConfidence)
}

// Validate checks structural soundness: convex weights, descending win-rate
// and risk thresholds, ordered timing steps, positive normalizers.
func (c *ScoringConfig) Validate() error {
	tol := c.Validation.WeightSumTolerance
	if tol == 0 {
		tol = 0.001
	}
	if diff := math.Abs(c.Weights.Sum() - 1.0); diff > tol {
		return fmt.Errorf("component weights sum to %.4f, want 1.0 ±%.4f", c.Weights.Sum(), tol)
	}
	r := c.Reputation
	if !(r.STierWinRate > r.ATierWinRate && r.ATierWinRate > r.BTierWinRate) {
		return fmt.Errorf("reputation win-rate thresholds must descend: S=%.2f A=%.2f B=%.2f",
			r.STierWinRate, r.ATierWinRate, r.BTierWinRate)
	}
	if r.MinTrades < 1 {
		return fmt.Errorf("reputation min_trades must be >= 1, got %d", r.MinTrades)
	}
	cv := c.Conviction
	if cv.SizeNormalization <= 0 {
		return fmt.Errorf("conviction size_normalization must be positive, got %.2f", cv.SizeNormalization)
	}
	if cv.SizeMultiplierCap <= 0 || cv.SaturationMultiplier <= 0 {
		return fmt.Errorf("conviction multipliers must be positive")
	}
	if cv.RoleWeightPrimary < cv.RoleWeightSecondary {
		return fmt.Errorf("primary role weight %.2f must be >= secondary %.2f",
			cv.RoleWeightPrimary, cv.RoleWeightSecondary)
	}
	if !(cv.TierWeightS >= cv.TierWeightA && cv.TierWeightA >= cv.TierWeightB && cv.TierWeightB > 0) {
		return fmt.Errorf("tier weights must descend S >= A >= B > 0")
	}
	cw := cv.ConfidenceWeights
	if !(cw.VeryHigh >= cw.High && cw.High >= cw.Medium && cw.Medium >= cw.Low && cw.Low >= cw.VeryLow) {
		return fmt.Errorf("confidence weights must be monotonically decreasing")
	}
	rt := c.RiskTiers
	if !(rt.VeryLowMin > rt.LowMin && rt.LowMin > rt.MediumMin && rt.MediumMin > rt.HighMin) {
		return fmt.Errorf("risk tier floors must descend")
	}
	prev := 0.0
	for i, step := range c.Timing.Steps {
		if step.MaxAgeMinutes <= prev {
			return fmt.Errorf("timing step %d out of order: %.0f <= %.0f", i, step.MaxAgeMinutes, prev)
		}
		prev = step.MaxAgeMinutes
	}
	return nil
}

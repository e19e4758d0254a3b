package score

import (
	"math"
	"sync"

	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/conviction"
	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/reputation"
)

// Engine orchestrates the component scorers and conviction aggregations into
// one composite score with confidence and risk tier. It holds no mutable
// state: every call reads fresh caller-owned inputs and returns a fresh
// record, so concurrent Score calls for different assets need no locks.
//
// The engine cannot fail. All inputs are pre-validated value objects, all
// arithmetic is clamped, and every "no data" case maps to a documented
// neutral default.
type Engine struct {
	cfg        *config.ScoringConfig
	aggregator *conviction.Aggregator
}

// NewEngine builds an engine over one injected configuration. Multiple
// engines with different configurations can run side by side.
func NewEngine(cfg *config.ScoringConfig) *Engine {
	classifier := reputation.NewClassifier(cfg.Reputation)
	calc := conviction.NewWeightCalculator(cfg.Conviction, classifier)
	return &Engine{
		cfg:        cfg,
		aggregator: conviction.NewAggregator(calc),
	}
}

// Config exposes the engine's configuration for read-only inspection.
func (e *Engine) Config() *config.ScoringConfig { return e.cfg }

// Score runs one scoring pass. The five component scorers and two conviction
// aggregations are pure and independent, so they run as parallel tasks
// joined before the composite is combined. Identical inputs yield
// bit-identical records: the engine stamps no timestamp and no id.
func (e *Engine) Score(tokenID string, metrics domain.MetricsBundle, activities []domain.WalletActivity) domain.ScoreRecord {
	var (
		onChain, social, scamInv  float64
		narrative, timing         float64
		primaryRes, secondaryRes  conviction.Result
	)

	var wg sync.WaitGroup
	wg.Add(7)
	go func() { defer wg.Done(); onChain = OnChainHealth(e.cfg.OnChain, metrics) }()
	go func() { defer wg.Done(); social = SocialMomentum(e.cfg.Social, metrics) }()
	go func() { defer wg.Done(); scamInv = ScamRiskInverse(e.cfg.Scam, metrics) }()
	go func() { defer wg.Done(); narrative = NarrativeBonus(e.cfg.Narrative, tokenID, metrics) }()
	go func() { defer wg.Done(); timing = TimingBonus(e.cfg.Timing, metrics) }()
	go func() { defer wg.Done(); primaryRes = e.aggregator.Aggregate(activities, domain.RolePrimary) }()
	go func() { defer wg.Done(); secondaryRes = e.aggregator.Aggregate(activities, domain.RoleSecondary) }()
	wg.Wait()

	w := e.cfg.Weights
	composite := onChain*w.OnChainHealth +
		social*w.SocialMomentum +
		primaryRes.Score*w.PrimaryConviction +
		secondaryRes.Score*w.SecondaryConviction +
		scamInv*w.ScamRiskInverse +
		narrative + timing
	composite = clamp(math.Round(composite), 0, 100)

	conf := determineConfidence(e.cfg.Confidence, metrics, activities, primaryRes, secondaryRes)

	return domain.ScoreRecord{
		TokenID:   tokenID,
		Composite: composite,
		Components: domain.ComponentScores{
			OnChainHealth:       onChain,
			SocialMomentum:      social,
			PrimaryConviction:   primaryRes.Score,
			SecondaryConviction: secondaryRes.Score,
			ScamRiskInverse:     scamInv,
			NarrativeBonus:      narrative,
			TimingBonus:         timing,
		},
		Confidence:     conf.level,
		ConfidenceBand: conf.band,
		Flags:          conf.flags,
		RiskTier:       riskTier(e.cfg.RiskTiers, composite),
	}
}

package domain

// Advisory flag names appended during confidence derivation. Flags are
// append-only evidence within one scoring pass.
const (
	FlagNewToken      = "NEW_TOKEN"
	FlagLowLiquidity  = "LOW_LIQUIDITY"
	FlagSingleSource  = "SINGLE_SOURCE"
	FlagSecondaryOnly = "SECONDARY_ONLY"
)

// ComponentScores is the per-component breakdown behind a composite score.
// The five weighted components are 0-100; the two bonuses are small-range
// terms added unweighted.
type ComponentScores struct {
	OnChainHealth       float64 `json:"on_chain_health"`
	SocialMomentum      float64 `json:"social_momentum"`
	PrimaryConviction   float64 `json:"primary_conviction"`
	SecondaryConviction float64 `json:"secondary_conviction"`
	ScamRiskInverse     float64 `json:"scam_risk_inverse"`
	NarrativeBonus      float64 `json:"narrative_bonus"` // 0-30
	TimingBonus         float64 `json:"timing_bonus"`    // 0-20
}

// ScoreRecord is the immutable output of one scoring pass. No field is
// mutated after construction. The engine deliberately stamps no timestamp
// and no id, so identical inputs produce bit-identical records; callers that
// need provenance wrap the record (see persistence.StoredScore).
type ScoreRecord struct {
	TokenID        string          `json:"token_id"`
	Composite      float64         `json:"composite"` // [0,100], rounded
	Components     ComponentScores `json:"components"`
	Confidence     ConfidenceLevel `json:"confidence"`
	ConfidenceBand float64         `json:"confidence_band"` // ± points
	Flags          []string        `json:"flags"`
	RiskTier       RiskTier        `json:"risk_tier"`
}

// HasFlag reports whether the named advisory flag was appended during the
// pass that produced this record.
func (r ScoreRecord) HasFlag(name string) bool {
	for _, f := range r.Flags {
		if f == name {
			return true
		}
	}
	return false
}

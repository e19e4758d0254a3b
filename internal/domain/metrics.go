package domain

// MetricsBundle is the immutable per-asset input to one scoring pass. It is
// assembled upstream by the chain/social collectors and never mutated after
// construction; the engine only reads it.
type MetricsBundle struct {
	OnChain            OnChainMetrics   `json:"on_chain"`
	Social             SocialMetrics    `json:"social"`
	VolumeAuthenticity float64          `json:"volume_authenticity"` // 0-100, computed upstream
	ScamFilter         ScamFilterResult `json:"scam_filter"`
}

// OnChainMetrics captures liquidity and holder structure for one token.
type OnChainMetrics struct {
	MarketCapUSD     float64 `json:"market_cap_usd"`
	VolumeUSD24h     float64 `json:"volume_usd_24h"`
	VolumeToMcap     float64 `json:"volume_to_mcap"`
	HolderCount      int     `json:"holder_count"`
	Top10HoldingsPct float64 `json:"top10_holdings_pct"` // share of supply held by top 10 wallets
	LiquidityUSD     float64 `json:"liquidity_usd"`
	AgeMinutes       float64 `json:"age_minutes"`
}

// SocialMetrics captures social momentum signals for one token.
type SocialMetrics struct {
	MentionVelocity     float64  `json:"mention_velocity"`     // mentions per hour
	EngagementQuality   float64  `json:"engagement_quality"`   // 0-1
	AccountAuthenticity float64  `json:"account_authenticity"` // 0-1, bot-filtered share
	Sentiment           float64  `json:"sentiment"`            // [-1,1]
	Narrative           string   `json:"narrative"`
	KOLMentions         []string `json:"kol_mentions"`
}

// ScamFilterResult is the verdict of the external contract/deployer analyzer.
// The engine treats it as authoritative: reject zeroes the safety component,
// flag caps it.
type ScamFilterResult struct {
	Verdict               ScamVerdict `json:"verdict"`
	Flags                 []string    `json:"flags"`
	MintAuthorityActive   bool        `json:"mint_authority_active"`
	FreezeAuthorityActive bool        `json:"freeze_authority_active"`
	DevRugHistory         bool        `json:"dev_rug_history"`
	BundledSupplyPct      float64     `json:"bundled_supply_pct"`
	DevSoldToExchange     bool        `json:"dev_sold_to_exchange"`
}

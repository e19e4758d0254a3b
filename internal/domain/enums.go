package domain

// WalletRole distinguishes the two trust tiers of tracked wallets. Primary
// wallets are confirmed to belong to a tracked actor; secondary wallets are
// only probabilistically linked.
type WalletRole string

const (
	RolePrimary   WalletRole = "primary"
	RoleSecondary WalletRole = "secondary"
)

// AttributionConfidence is the ordinal certainty of a secondary-wallet-to-actor
// link. Higher values mean a stronger link. Primary wallets always carry
// ConfidenceVeryHigh by construction.
type AttributionConfidence int

const (
	ConfidenceVeryLow AttributionConfidence = iota + 1
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceVeryHigh
)

func (c AttributionConfidence) String() string {
	switch c {
	case ConfidenceVeryLow:
		return "very_low"
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	case ConfidenceVeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// ParseAttributionConfidence maps the wire label back to the ordinal.
// Unknown labels resolve to ConfidenceVeryLow so a malformed feed can never
// inflate a wallet's influence.
func ParseAttributionConfidence(s string) AttributionConfidence {
	switch s {
	case "very_high":
		return ConfidenceVeryHigh
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	case "low":
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ReputationTier classifies a tracked actor's historical trading skill.
// Ordered ascending so tier comparisons read naturally: TierUnproven < TierB
// < TierA < TierS.
type ReputationTier int

const (
	TierUnproven ReputationTier = iota
	TierB
	TierA
	TierS
)

func (t ReputationTier) String() string {
	switch t {
	case TierS:
		return "S"
	case TierA:
		return "A"
	case TierB:
		return "B"
	default:
		return "unproven"
	}
}

// ScamVerdict is the externally computed contract/deployer risk classification.
// Reject is an absolute veto on the safety component, flag is a soft cap.
type ScamVerdict string

const (
	VerdictPass   ScamVerdict = "pass"
	VerdictFlag   ScamVerdict = "flag"
	VerdictReject ScamVerdict = "reject"
)

// ConfidenceLevel expresses how much the engine trusts its own composite.
type ConfidenceLevel string

const (
	ConfidenceLevelHigh   ConfidenceLevel = "high"
	ConfidenceLevelMedium ConfidenceLevel = "medium"
	ConfidenceLevelLow    ConfidenceLevel = "low"
)

// RiskTier is the five-level ordinal derived from the composite score.
// Higher scores map to lower risk.
type RiskTier string

const (
	RiskVeryLow  RiskTier = "very_low"
	RiskLow      RiskTier = "low"
	RiskMedium   RiskTier = "medium"
	RiskHigh     RiskTier = "high"
	RiskVeryHigh RiskTier = "very_high"
)

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonscan/tokenrank/internal/domain"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 0.001)
}

func TestValidate_WeightSum(t *testing.T) {
	cfg := Default()
	cfg.Weights.OnChainHealth = 0.50 // pushes the sum past 1.0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights sum")
}

func TestValidate_DescendingWinRates(t *testing.T) {
	cfg := Default()
	cfg.Reputation.BTierWinRate = 0.90 // B above A
	assert.Error(t, cfg.Validate())
}

func TestValidate_TimingStepOrder(t *testing.T) {
	cfg := Default()
	cfg.Timing.Steps = []TimingStep{
		{MaxAgeMinutes: 360, Bonus: 10},
		{MaxAgeMinutes: 60, Bonus: 20},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ConfidenceWeightsMonotone(t *testing.T) {
	cfg := Default()
	cfg.Conviction.ConfidenceWeights.Low = 0.99
	assert.Error(t, cfg.Validate())
}

func TestValidate_RoleWeights(t *testing.T) {
	cfg := Default()
	cfg.Conviction.RoleWeightSecondary = 1.5 // above primary
	assert.Error(t, cfg.Validate())
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	body := `
reputation:
  min_trades: 25
narrative:
  themes: ["robot", "frog"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden fields take, everything else keeps its default.
	assert.Equal(t, 25, cfg.Reputation.MinTrades)
	assert.Equal(t, []string{"robot", "frog"}, cfg.Narrative.Themes)
	assert.InDelta(t, 0.25, cfg.Weights.PrimaryConviction, 1e-9)
	assert.Equal(t, 900, cfg.Reputation.MinHoldSeconds)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	body := `
weights:
  on_chain_health: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestMinSecondaryLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, domain.ConfidenceMedium, cfg.Conviction.MinSecondaryLevel())

	cfg.Conviction.MinSecondaryConfidence = "high"
	assert.Equal(t, domain.ConfidenceHigh, cfg.Conviction.MinSecondaryLevel())

	// Unknown labels collapse to the floor, never grant eligibility.
	cfg.Conviction.MinSecondaryConfidence = "garbage"
	assert.Equal(t, domain.ConfidenceVeryLow, cfg.Conviction.MinSecondaryLevel())
}

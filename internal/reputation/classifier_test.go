package reputation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
)

func testClassifier() *Classifier {
	return NewClassifier(config.Default().Reputation)
}

func stats(trades int, winRate float64, hold time.Duration) domain.ReputationStats {
	return domain.ReputationStats{
		ActorID:         "actor-1",
		TotalTrades:     trades,
		WinRate:         winRate,
		AvgHoldDuration: hold,
	}
}

func TestClassify_TierThresholds(t *testing.T) {
	c := testClassifier()

	cases := []struct {
		name    string
		winRate float64
		want    domain.ReputationTier
	}{
		{"s_tier_at_threshold", 0.75, domain.TierS},
		{"s_tier_above", 0.92, domain.TierS},
		{"a_tier", 0.60, domain.TierA},
		{"a_tier_just_below_s", 0.749, domain.TierA},
		{"b_tier", 0.45, domain.TierB},
		{"below_all_thresholds", 0.30, domain.TierUnproven},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(stats(50, tc.winRate, 2*time.Hour))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_SampleSizeGate(t *testing.T) {
	c := testClassifier()

	// High win rate never outweighs a thin sample.
	for _, trades := range []int{0, 1, 5, 9} {
		got := c.Evaluate(stats(trades, 0.99, 2*time.Hour))
		assert.Equal(t, domain.TierUnproven, got.Tier, "trades=%d", trades)
		assert.Equal(t, ReasonInsufficientSample, got.Reason)
	}

	// Exactly at the minimum passes the gate.
	got := c.Evaluate(stats(10, 0.99, 2*time.Hour))
	assert.Equal(t, domain.TierS, got.Tier)
}

func TestClassify_FrontRunnerFilter(t *testing.T) {
	c := testClassifier()

	// An S-qualifying win rate with a 30-second average hold is the
	// signature of order detection, not conviction.
	got := c.Evaluate(stats(100, 0.95, 30*time.Second))
	assert.Equal(t, domain.TierUnproven, got.Tier)
	assert.Equal(t, ReasonShortHold, got.Reason)

	// Just past the holding floor the same record qualifies.
	got = c.Evaluate(stats(100, 0.95, 15*time.Minute))
	assert.Equal(t, domain.TierS, got.Tier)
}

func TestClassify_Deterministic(t *testing.T) {
	c := testClassifier()
	s := stats(42, 0.63, time.Hour)
	first := c.Evaluate(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Evaluate(s))
	}
}

func TestClassify_ReasonLowWinRate(t *testing.T) {
	c := testClassifier()
	got := c.Evaluate(stats(20, 0.10, time.Hour))
	assert.Equal(t, domain.TierUnproven, got.Tier)
	assert.Equal(t, ReasonLowWinRate, got.Reason)
}

package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/metrics"
	"github.com/moonscan/tokenrank/internal/persistence"
	"github.com/moonscan/tokenrank/internal/reputation"
	"github.com/moonscan/tokenrank/internal/score"
)

type memArchive struct {
	mu     sync.Mutex
	stored []persistence.StoredScore
	err    error
}

func (m *memArchive) Insert(ctx context.Context, s persistence.StoredScore) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, s)
	return nil
}

func (m *memArchive) Latest(ctx context.Context, tokenID string) (persistence.StoredScore, error) {
	return persistence.StoredScore{}, persistence.ErrNotFound
}

func (m *memArchive) Leaderboard(ctx context.Context, limit int) ([]persistence.StoredScore, error) {
	return nil, nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []persistence.StoredScore
}

func (m *memPublisher) Broadcast(s persistence.StoredScore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, s)
}

type stubStatsCache struct {
	snapshots map[string]domain.ReputationStats
}

func (s *stubStatsCache) Get(ctx context.Context, actorID string) (domain.ReputationStats, bool, error) {
	snap, ok := s.snapshots[actorID]
	return snap, ok, nil
}

func (s *stubStatsCache) Put(ctx context.Context, stats domain.ReputationStats) error { return nil }

func (s *stubStatsCache) Stats() reputation.CacheStats { return reputation.CacheStats{} }

func candidate(tokenID string) Candidate {
	return Candidate{
		TokenID: tokenID,
		Metrics: domain.MetricsBundle{
			OnChain: domain.OnChainMetrics{
				VolumeToMcap:     0.3,
				HolderCount:      1200,
				Top10HoldingsPct: 20,
				LiquidityUSD:     50_000,
				AgeMinutes:       300,
			},
			Social: domain.SocialMetrics{
				MentionVelocity:     100,
				EngagementQuality:   0.7,
				AccountAuthenticity: 0.8,
				Sentiment:           0.4,
			},
			VolumeAuthenticity: 80,
			ScamFilter:         domain.ScamFilterResult{Verdict: domain.VerdictPass},
		},
	}
}

func fixedScanner(opts ...Option) *Scanner {
	engine := score.NewEngine(config.Default())
	s := NewScanner(engine, metrics.NewRegistry(), opts...)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	s.newID = func() uuid.UUID { return uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") }
	return s
}

func TestScoreCandidate_ArchivesAndBroadcasts(t *testing.T) {
	archive := &memArchive{}
	pub := &memPublisher{}
	s := fixedScanner(WithArchive(archive), WithPublisher(pub))

	stored := s.ScoreCandidate(context.Background(), candidate("TOK"))

	assert.Equal(t, "TOK", stored.Record.TokenID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), stored.ScoredAt)
	require.Len(t, archive.stored, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, stored, archive.stored[0])
	assert.Equal(t, stored, pub.events[0])
}

func TestScoreCandidate_ArchiveFailureIsBestEffort(t *testing.T) {
	archive := &memArchive{err: errors.New("db down")}
	s := fixedScanner(WithArchive(archive))

	stored := s.ScoreCandidate(context.Background(), candidate("TOK"))
	assert.Equal(t, "TOK", stored.Record.TokenID, "scoring must survive a dead archive")
}

func TestScoreCandidate_ResolvesStatsFromCache(t *testing.T) {
	cache := &stubStatsCache{snapshots: map[string]domain.ReputationStats{
		"actor-1": {
			ActorID:         "actor-1",
			TotalTrades:     40,
			WinRate:         0.8,
			AvgHoldDuration: 2 * time.Hour,
		},
	}}
	s := fixedScanner(WithStatsCache(cache))

	c := candidate("TOK")
	c.Activities = []domain.WalletActivity{{
		ActorID:    "actor-1",
		Role:       domain.RolePrimary,
		Confidence: domain.ConfidenceVeryHigh,
		AmountSOL:  20,
		// Stats deliberately empty: the feed did not resolve them.
	}}

	stored := s.ScoreCandidate(context.Background(), c)
	// With the cached S-tier snapshot: 0.8 weight × 2.0 size cap × 50 = 80.
	assert.InDelta(t, 80.0, stored.Record.Components.PrimaryConviction, 1e-9)

	// Without the cache the same actor is unproven and contributes nothing.
	bare := fixedScanner()
	stored = bare.ScoreCandidate(context.Background(), c)
	assert.Zero(t, stored.Record.Components.PrimaryConviction)
}

func TestScorePass_OrderPreserved(t *testing.T) {
	s := fixedScanner(WithWorkers(4))

	var candidates []Candidate
	for _, id := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		candidates = append(candidates, candidate(id))
	}

	results := s.ScorePass(context.Background(), candidates)
	require.Len(t, results, len(candidates))
	for i, c := range candidates {
		assert.Equal(t, c.TokenID, results[i].Record.TokenID)
	}
}

func TestScorePass_Empty(t *testing.T) {
	s := fixedScanner()
	assert.Nil(t, s.ScorePass(context.Background(), nil))
}

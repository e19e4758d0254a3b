// Package scan runs scoring passes over batches of candidate assets. Each
// asset's pass is independent, so a bounded worker pool scores many
// candidates concurrently and fans the records out to the archive and any
// live subscribers.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/metrics"
	"github.com/moonscan/tokenrank/internal/persistence"
	"github.com/moonscan/tokenrank/internal/reputation"
	"github.com/moonscan/tokenrank/internal/score"
)

// Candidate is one asset queued for scoring: the collected metrics bundle
// plus the wallet activity observed on it.
type Candidate struct {
	TokenID    string                  `json:"token_id"`
	Metrics    domain.MetricsBundle    `json:"metrics"`
	Activities []domain.WalletActivity `json:"activities"`
}

// Publisher receives every stored score as it is produced.
type Publisher interface {
	Broadcast(score persistence.StoredScore)
}

// Scanner scores candidates and routes the records to sinks. Archive and
// publish are both best-effort: a failing sink never blocks or fails a pass.
type Scanner struct {
	engine    *score.Engine
	stats     reputation.StatsCache
	archive   persistence.ScoreStore
	publisher Publisher
	metrics   *metrics.Registry
	workers   int

	now   func() time.Time
	newID func() uuid.UUID
}

// Option configures optional scanner collaborators.
type Option func(*Scanner)

// WithArchive persists every record to the score store.
func WithArchive(store persistence.ScoreStore) Option {
	return func(s *Scanner) { s.archive = store }
}

// WithPublisher broadcasts every record to live subscribers.
func WithPublisher(p Publisher) Option {
	return func(s *Scanner) { s.publisher = p }
}

// WithStatsCache resolves missing reputation snapshots before scoring.
func WithStatsCache(cache reputation.StatsCache) Option {
	return func(s *Scanner) { s.stats = cache }
}

// WithWorkers bounds pass concurrency.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// SetPublisher attaches a publisher after construction, for wiring against
// sinks that are built around the scanner itself. Call before scoring starts.
func (s *Scanner) SetPublisher(p Publisher) { s.publisher = p }

// NewScanner builds a scanner around one engine instance.
func NewScanner(engine *score.Engine, reg *metrics.Registry, opts ...Option) *Scanner {
	s := &Scanner{
		engine:  engine,
		metrics: reg,
		workers: 8,
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreCandidate runs one full pass for one asset: resolve stats, score,
// stamp provenance, archive, broadcast.
func (s *Scanner) ScoreCandidate(ctx context.Context, c Candidate) persistence.StoredScore {
	start := time.Now()
	activities := s.resolveStats(ctx, c.Activities)
	record := s.engine.Score(c.TokenID, c.Metrics, activities)

	stored := persistence.StoredScore{
		ID:       s.newID(),
		ScoredAt: s.now().UTC(),
		Record:   record,
	}

	if s.metrics != nil {
		s.metrics.ObserveScore(record, time.Since(start).Seconds())
		if s.stats != nil {
			s.metrics.CacheHitRatio.Set(s.stats.Stats().HitRate())
		}
	}

	log.Debug().Str("token", c.TokenID).
		Float64("composite", record.Composite).
		Str("risk_tier", string(record.RiskTier)).
		Str("confidence", string(record.Confidence)).
		Msg("scored candidate")

	if s.archive != nil {
		if err := s.archive.Insert(ctx, stored); err != nil {
			if s.metrics != nil {
				s.metrics.ArchiveFailures.Inc()
			}
			log.Error().Err(err).Str("token", c.TokenID).Msg("score archive write failed")
		}
	}
	if s.publisher != nil {
		s.publisher.Broadcast(stored)
	}
	return stored
}

// ScorePass scores a batch concurrently. Results keep the input order so
// callers can correlate candidates to records positionally.
func (s *Scanner) ScorePass(ctx context.Context, candidates []Candidate) []persistence.StoredScore {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]persistence.StoredScore, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if s.metrics != nil {
					s.metrics.ActiveWorkers.Inc()
				}
				results[i] = s.ScoreCandidate(ctx, candidates[i])
				if s.metrics != nil {
					s.metrics.ActiveWorkers.Dec()
				}
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log.Info().Int("candidates", len(candidates)).Int("workers", workers).
		Msg("scoring pass complete")
	return results
}

// resolveStats fills in missing reputation snapshots from the cache. An
// activity that already carries a snapshot is used as-is; cache errors leave
// the actor unproven rather than failing the pass.
func (s *Scanner) resolveStats(ctx context.Context, activities []domain.WalletActivity) []domain.WalletActivity {
	if s.stats == nil {
		return activities
	}
	resolved := make([]domain.WalletActivity, len(activities))
	copy(resolved, activities)
	for i := range resolved {
		if resolved[i].Stats.HasHistory() {
			continue
		}
		snap, ok, err := s.stats.Get(ctx, resolved[i].ActorID)
		if err != nil {
			log.Warn().Err(err).Str("actor", resolved[i].ActorID).Msg("reputation lookup failed")
			continue
		}
		if ok {
			resolved[i].Stats = snap
		}
	}
	return resolved
}

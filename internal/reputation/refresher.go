package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/moonscan/tokenrank/internal/config"
	"github.com/moonscan/tokenrank/internal/domain"
	"github.com/moonscan/tokenrank/internal/persistence"
)

// Refresher recomputes ReputationStats from the closed-trade history on a
// fixed interval and writes whole snapshots through the cache. The scoring
// path never triggers or awaits a refresh; it only reads snapshots.
type Refresher struct {
	cfg    config.ReputationConfig
	trades persistence.TradeStore
	cache  StatsCache
	cron   *cron.Cron
	now    func() time.Time
}

// NewRefresher wires the recompute loop. The clock is injectable for tests.
func NewRefresher(cfg config.ReputationConfig, trades persistence.TradeStore, cache StatsCache) *Refresher {
	return &Refresher{
		cfg:    cfg,
		trades: trades,
		cache:  cache,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start schedules the periodic recompute and runs one immediately so the
// cache is warm before the first scoring pass.
func (r *Refresher) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", r.cfg.RefreshInterval())
	if _, err := r.cron.AddFunc(spec, func() {
		if err := r.RefreshAll(ctx); err != nil {
			log.Error().Err(err).Msg("reputation refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule reputation refresh: %w", err)
	}

	if err := r.RefreshAll(ctx); err != nil {
		log.Warn().Err(err).Msg("initial reputation refresh failed, cache starts cold")
	}

	r.cron.Start()
	log.Info().Dur("interval", r.cfg.RefreshInterval()).Msg("reputation refresher started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll recomputes every actor's stats from scratch. Snapshots are full
// replacements; a partially failed run leaves older snapshots intact until
// their TTL expires.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	trades, err := r.trades.ClosedTrades(ctx)
	if err != nil {
		return fmt.Errorf("reputation refresh: %w", err)
	}

	byActor := make(map[string][]persistence.ClosedTrade)
	for _, t := range trades {
		byActor[t.ActorID] = append(byActor[t.ActorID], t)
	}

	var failed int
	for actorID, actorTrades := range byActor {
		stats := r.compute(actorID, actorTrades)
		if err := r.cache.Put(ctx, stats); err != nil {
			failed++
			log.Error().Err(err).Str("actor", actorID).Msg("failed to store reputation snapshot")
		}
	}

	log.Info().Int("actors", len(byActor)).Int("failed", failed).
		Int("trades", len(trades)).Msg("reputation stats recomputed")
	if failed > 0 {
		return fmt.Errorf("reputation refresh: %d/%d snapshots failed to store", failed, len(byActor))
	}
	return nil
}

// compute derives one actor's snapshot. A win is a closed trade returning at
// least the configured threshold.
func (r *Refresher) compute(actorID string, trades []persistence.ClosedTrade) domain.ReputationStats {
	var wins int
	var returnSum float64
	var holdSum time.Duration
	for _, t := range trades {
		if t.ReturnPct >= r.cfg.WinReturnThreshold {
			wins++
		}
		returnSum += t.ReturnPct
		holdSum += t.HoldDuration
	}

	n := len(trades)
	stats := domain.ReputationStats{
		ActorID:     actorID,
		TotalTrades: n,
		UpdatedAt:   r.now().UTC(),
	}
	if n > 0 {
		stats.WinRate = float64(wins) / float64(n)
		stats.AvgReturnPct = returnSum / float64(n)
		stats.AvgHoldDuration = holdSum / time.Duration(n)
	}
	return stats
}

// Package metrics exposes Prometheus instrumentation for the scoring
// service: pass latency, score outcomes, and reputation cache health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moonscan/tokenrank/internal/domain"
)

// Registry holds every collector the service exports.
type Registry struct {
	ScoringDuration *prometheus.HistogramVec
	ScoresTotal     *prometheus.CounterVec
	FlagsTotal      *prometheus.CounterVec
	CompositeScore  prometheus.Histogram
	CacheHitRatio   prometheus.Gauge
	ArchiveFailures prometheus.Counter
	ActiveWorkers   prometheus.Gauge

	reg *prometheus.Registry
}

// NewRegistry creates and registers all collectors on a fresh registry, so
// test instances never collide on the global default.
func NewRegistry() *Registry {
	r := &Registry{
		ScoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokenrank_scoring_duration_seconds",
				Help:    "Duration of one scoring pass",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"result"},
		),
		ScoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenrank_scores_total",
				Help: "Score records produced, by risk tier",
			},
			[]string{"risk_tier"},
		),
		FlagsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenrank_flags_total",
				Help: "Advisory flags appended during confidence derivation",
			},
			[]string{"flag"},
		),
		CompositeScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tokenrank_composite_score",
				Help:    "Distribution of composite scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tokenrank_reputation_cache_hit_ratio",
				Help: "Reputation stats cache hit ratio (0.0 to 1.0)",
			},
		),
		ArchiveFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tokenrank_archive_failures_total",
				Help: "Score records that could not be archived",
			},
		),
		ActiveWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tokenrank_active_workers",
				Help: "Scoring workers currently busy",
			},
		),
		reg: prometheus.NewRegistry(),
	}

	r.reg.MustRegister(
		r.ScoringDuration, r.ScoresTotal, r.FlagsTotal, r.CompositeScore,
		r.CacheHitRatio, r.ArchiveFailures, r.ActiveWorkers,
	)
	return r
}

// Gatherer exposes the underlying registry for the /metrics handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveScore records the outcome of one scoring pass.
func (r *Registry) ObserveScore(rec domain.ScoreRecord, seconds float64) {
	r.ScoringDuration.WithLabelValues("ok").Observe(seconds)
	r.ScoresTotal.WithLabelValues(string(rec.RiskTier)).Inc()
	r.CompositeScore.Observe(rec.Composite)
	for _, f := range rec.Flags {
		r.FlagsTotal.WithLabelValues(f).Inc()
	}
}

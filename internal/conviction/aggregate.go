package conviction

import "github.com/moonscan/tokenrank/internal/domain"

// Result is a per-role conviction outcome. Evidence counts the trades that
// actually contributed, so callers can tell "genuinely zero conviction" from
// "no data was available".
type Result struct {
	Score    float64 `json:"score"` // [0,100]
	Evidence int     `json:"evidence"`
}

// NoActivity reports whether the result came from an empty or fully
// ineligible activity set.
func (r Result) NoActivity() bool {
	return r.Evidence == 0
}

// Aggregator folds per-trade weights into a 0-100 per-role sub-score.
type Aggregator struct {
	calc *WeightCalculator
}

// NewAggregator builds an aggregator over the given weight calculator.
func NewAggregator(calc *WeightCalculator) *Aggregator {
	return &Aggregator{calc: calc}
}

// Aggregate filters activities to the given role, drops trades failing the
// eligibility gate, sums weight × sizeMultiplier, and maps the sum through
//
//	min(100, sum × saturationMultiplier)
//
// The mapping is deliberately steep: with the default ×50, conviction
// saturates once weighted evidence reaches 2.0 weight-units, so one or two
// well-weighted trades can already reach high conviction. Empty input is a
// zero result, never an error.
func (g *Aggregator) Aggregate(activities []domain.WalletActivity, role domain.WalletRole) Result {
	var sum float64
	var evidence int
	for _, a := range activities {
		if a.Role != role || !g.calc.MeetsMinimum(a) {
			continue
		}
		w := g.calc.Weight(a)
		if w <= 0 {
			continue
		}
		sum += w * g.calc.SizeMultiplier(a)
		evidence++
	}
	score := sum * g.calc.cfg.SaturationMultiplier
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return Result{Score: score, Evidence: evidence}
}

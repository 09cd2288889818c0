// Package fusion ranks a candidate population against one anchor by fusing
// the per-pair dimension scores with a convex combination and a weighted
// reciprocal rank path.
package fusion

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
	"github.com/mchmarny/tradepulse/pkg/score"
)

const (
	RRFK         = 60.0
	SRRFBeta     = 5.0
	CCAlpha      = 0.60
	EquityBonus  = 0.03
	ConsensusCap = 0.08
	RecencyFloor = 0.70

	hardRankShare = 0.4
	alphaFloor    = 0.3
	epsilon       = 1e-9
	neutral       = 0.5
)

// Pair is one exporter/importer candidate pair. ID is the candidate side's ID.
type Pair struct {
	ID       string
	Exporter *profile.Exporter
	Importer *profile.Importer
}

// Fusion holds the intermediate values the final score was built from.
type Fusion struct {
	CC          float64 `json:"cc_score" yaml:"ccScore"`
	WRRF        float64 `json:"wrrf_score" yaml:"wrrfScore"`
	Consensus   float64 `json:"consensus_bonus" yaml:"consensusBonus"`
	RecencyMult float64 `json:"recency_mult" yaml:"recencyMult"`
	Equity      float64 `json:"equity_bonus" yaml:"equityBonus"`
	Hybrid      float64 `json:"hybrid_score" yaml:"hybridScore"`
	Final       float64 `json:"final_score" yaml:"finalScore"`
}

// Breakdown is the full audit trail of one ranked candidate.
type Breakdown struct {
	score.Components `yaml:",inline"`
	Fusion           Fusion       `json:"fusion" yaml:"fusion"`
	EffectiveWeights score.Vector `json:"effective_weights" yaml:"effectiveWeights"`
}

// Result is one ranked candidate.
type Result struct {
	ID        string    `json:"id" yaml:"id"`
	Score     float64   `json:"score" yaml:"score"`
	Breakdown Breakdown `json:"breakdown" yaml:"breakdown"`
}

// Engine fuses pair scores. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	scorer *score.Scorer
}

// NewEngine returns an Engine over s, or over a default scorer when s is nil.
func NewEngine(s *score.Scorer) *Engine {
	if s == nil {
		s = score.NewScorer(nil)
	}
	return &Engine{scorer: s}
}

// Rank scores every pair against the rest of the population. Results are in
// input order, one per pair. Pairs must carry both profiles.
func (e *Engine) Rank(pairs []Pair, risks risk.Map) []Result {
	if len(pairs) == 0 {
		return []Result{}
	}
	start := time.Now()

	n := len(pairs)
	comps := make([]score.Components, n)
	cols := make([][]float64, score.NumDimensions)
	for d := range cols {
		cols[d] = make([]float64, n)
	}
	equity := make([]float64, n)

	for i, p := range pairs {
		c := e.scorer.Compute(p.Exporter, p.Importer, risks)
		comps[i] = c
		for d, v := range c.Vector() {
			cols[d][i] = v
		}
		if p.Exporter.MSME {
			equity[i] = EquityBonus
		}
	}

	weights := score.CCWeights.Normalized()
	cc := ccScores(cols, weights, n)
	wrrf := minMax(wrrfScores(cols, n))
	cb := consensus(cols, n)

	hybrid := make([]float64, n)
	recMult := make([]float64, n)
	for i := range hybrid {
		recMult[i] = RecencyFloor + (1-RecencyFloor)*comps[i].Recency
		hybrid[i] = (CCAlpha*cc[i]+(1-CCAlpha)*wrrf[i]+cb[i])*recMult[i] + equity[i]
	}
	final := minMax(hybrid)
	eff := effectiveWeights(cols, weights)

	results := make([]Result, n)
	for i, p := range pairs {
		results[i] = Result{
			ID:    p.ID,
			Score: final[i],
			Breakdown: Breakdown{
				Components: comps[i],
				Fusion: Fusion{
					CC:          cc[i],
					WRRF:        wrrf[i],
					Consensus:   cb[i],
					RecencyMult: recMult[i],
					Equity:      equity[i],
					Hybrid:      hybrid[i],
					Final:       final[i],
				},
				EffectiveWeights: eff,
			},
		}
	}

	slog.Debug("ranked candidates", "count", n, "duration", time.Since(start))
	return results
}

// ccScores min-max normalizes each column and takes the weighted sum.
// Constant columns normalize to 0.
func ccScores(cols [][]float64, w score.Vector, n int) []float64 {
	out := make([]float64, n)
	for d, col := range cols {
		lo, hi := bounds(col)
		rng := hi - lo
		if rng <= epsilon {
			rng = 1
		}
		for i, v := range col {
			out[i] += (v - lo) / rng * w[d]
		}
	}
	return out
}

// wrrfScores sums alpha / (RRFK + blended rank) over the discriminating
// columns.
func wrrfScores(cols [][]float64, n int) []float64 {
	out := make([]float64, n)
	for _, col := range cols {
		if isConstant(col) {
			continue
		}
		ranks := srrfRanks(col)
		alpha := alphas(col)
		for i := range col {
			out[i] += alpha[i] / (RRFK + ranks[i])
		}
	}
	return out
}

// srrfRanks blends the hard rank with the rank of the sigmoid-smoothed value
// centered on the column median.
func srrfRanks(col []float64) []float64 {
	med := median(col)
	soft := make([]float64, len(col))
	for i, v := range col {
		soft[i] = sigmoid(SRRFBeta * (v - med))
	}

	hard := hardRanks(col)
	smooth := hardRanks(soft)
	out := make([]float64, len(col))
	for i := range out {
		out[i] = hardRankShare*hard[i] + (1-hardRankShare)*smooth[i]
	}
	return out
}

// alphas weighs each value by its distance from the column median: near
// median ~0.5, strong outliers approach 1, never below alphaFloor.
func alphas(col []float64) []float64 {
	med := median(col)
	std := stddev(col) + epsilon
	out := make([]float64, len(col))
	for i, v := range col {
		dist := math.Abs(v-med) / std
		out[i] = math.Max(alphaFloor, math.Min(1, sigmoid(dist-1)))
	}
	return out
}

// consensus rewards candidates ranked in the top k by many columns. The bonus
// is scaled so its maximum is ConsensusCap.
func consensus(cols [][]float64, n int) []float64 {
	topK := float64(max(3, n/20))
	counts := make([]float64, n)
	for _, col := range cols {
		if isConstant(col) {
			continue
		}
		for i, r := range hardRanks(col) {
			if r <= topK {
				counts[i]++
			}
		}
	}

	out := make([]float64, n)
	mx := 0.0
	for i, c := range counts {
		out[i] = math.Exp(c/float64(len(cols))) - 1
		mx = math.Max(mx, out[i])
	}
	if mx <= 0 {
		return out
	}
	for i := range out {
		out[i] = out[i] / mx * ConsensusCap
	}
	return out
}

// effectiveWeights blends the share of each column's spread with the fixed
// weights 50/50, normalized to sum to 1.
func effectiveWeights(cols [][]float64, w score.Vector) score.Vector {
	var spread score.Vector
	for d, col := range cols {
		spread[d] = stddev(col)
	}
	if spread.Sum() > 0 {
		spread = spread.Normalized()
	} else {
		spread = w
	}

	var out score.Vector
	for d := range out {
		out[d] = 0.5*spread[d] + 0.5*w[d]
	}
	return out.Normalized()
}

// hardRanks returns the 1-based descending rank of each value. Ties keep
// input order.
func hardRanks(col []float64) []float64 {
	idx := make([]int, len(col))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case col[a] > col[b]:
			return -1
		case col[a] < col[b]:
			return 1
		default:
			return 0
		}
	})

	ranks := make([]float64, len(col))
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}

// minMax rescales to [0,1]. A degenerate range maps everything to 0.5.
func minMax(v []float64) []float64 {
	out := make([]float64, len(v))
	lo, hi := bounds(v)
	if hi-lo <= epsilon {
		for i := range out {
			out[i] = neutral
		}
		return out
	}
	for i, x := range v {
		out[i] = (x - lo) / (hi - lo)
	}
	return out
}

func median(v []float64) float64 {
	s := slices.Clone(v)
	slices.Sort(s)
	m := len(s) / 2
	if len(s)%2 == 0 {
		return (s[m-1] + s[m]) / 2
	}
	return s[m]
}

// stddev is the population standard deviation.
func stddev(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))

	ss := 0.0
	for _, x := range v {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(v)))
}

func bounds(v []float64) (lo, hi float64) {
	return slices.Min(v), slices.Max(v)
}

func isConstant(v []float64) bool {
	lo, hi := bounds(v)
	return hi-lo <= epsilon
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

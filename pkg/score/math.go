package score

import "math"

// Clamp bounds v to [0,1]. NaN clamps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Round4 rounds to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Jaccard returns |a∩b| / |a∪b| over the distinct values. Two empty sets are
// identical (1.0).
func Jaccard(a, b []string) float64 {
	sa := toSet(a)
	sb := toSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}

	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// LogRatioSimilarity is a Gaussian in log space with sigma 1.5: 1.0 when
// x == y, ~0.65 at a 4x gap. Non-positive inputs score 0.
func LogRatioSimilarity(x, y float64) float64 {
	if x <= 0 || y <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return 0
	}
	r := math.Log(x/y) / 1.5
	return math.Exp(-0.5 * r * r)
}

// NormLinear maps v from the [p5, p95] band onto [0,1].
func NormLinear(v, p5, p95 float64) float64 {
	if p95 <= p5 {
		return 0.5
	}
	return Clamp((v - p5) / (p95 - p5))
}

// NormLog is NormLinear in log space; values below 1 are treated as 1.
func NormLog(v, p5, p95 float64) float64 {
	if p95 <= p5 {
		return 0.5
	}
	lo := math.Log(math.Max(p5, 1))
	hi := math.Log(math.Max(p95, 1))
	if hi <= lo {
		return 0.5
	}
	return Clamp((math.Log(math.Max(v, 1)) - lo) / (hi - lo))
}

func toSet(list []string) map[string]struct{} {
	s := make(map[string]struct{}, len(list))
	for _, v := range list {
		s[v] = struct{}{}
	}
	return s
}

func avg(a, b float64) float64 {
	return (a + b) / 2
}

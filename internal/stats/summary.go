// Package stats holds small descriptive statistics used by the read API.
package stats

import (
	"math"
	"sort"
)

// Summary describes a sample.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P95   float64 `json:"p95"`
}

// Summarize computes a Summary. NaN values are ignored.
func Summarize(values []float64) Summary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Summary{}
	}
	sort.Float64s(clean)

	var sum float64
	for _, v := range clean {
		sum += v
	}

	return Summary{
		Count: len(clean),
		Mean:  sum / float64(len(clean)),
		Min:   clean[0],
		Max:   clean[len(clean)-1],
		P95:   percentileSorted(clean, 95),
	}
}

// percentileSorted interpolates linearly between closest ranks; p is 0-100.
func percentileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

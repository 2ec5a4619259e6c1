package stats

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []float64{42}, Summary{Count: 1, Mean: 42, Min: 42, Max: 42, P95: 42}},
		{"even sample", []float64{4, 1, 3, 2}, Summary{Count: 4, Mean: 2.5, Min: 1, Max: 4, P95: 3.85}},
		{"ignores NaN", []float64{math.NaN(), 10, 30, 20}, Summary{Count: 3, Mean: 20, Min: 10, Max: 30, P95: 29}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			if got.Count != tt.want.Count || got.Min != tt.want.Min || got.Max != tt.want.Max ||
				math.Abs(got.Mean-tt.want.Mean) > 1e-9 || math.Abs(got.P95-tt.want.P95) > 1e-9 {
				t.Errorf("Summarize(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

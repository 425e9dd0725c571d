package engine

import (
	"math"
	"testing"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		weights []float64
		want    float64
	}{
		{"empty vote set", nil, nil, 0},
		{"zero total weight", []float64{2, 3}, []float64{0, 0}, 0},
		{"equal weights equal arithmetic mean", []float64{1, 2, 3}, []float64{1, 1, 1}, 2},
		{"equal fractional weights", []float64{0, 3}, []float64{0.5, 0.5}, 1.5},
		// Higher-weight vote pulls the result toward itself:
		// (3*0.5 + 1*1.5) / 2.0 = 1.5 (vs arithmetic mean 2.0)
		{"unequal weights pull toward heavier vote", []float64{3, 1}, []float64{0.5, 1.5}, 1.5},
		{"single vote", []float64{2.4}, []float64{0.7}, 2.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(tt.values, tt.weights)
			if !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("WeightedAverage() = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name      string
		voteCount int
		wantMin   float64
		wantMax   float64
	}{
		{"zero votes", 0, 0, 0},
		{"one vote", 1, 0.048, 0.050},
		{"twenty votes", 20, 0.63, 0.64},
		{"fifty votes", 50, 0.91, 0.92},
		{"hundred votes", 100, 0.99, 0.994},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.voteCount)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Confidence(%d) = %.4f, want [%.3f, %.3f]", tt.voteCount, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestConfidence_MonotonicAndBounded(t *testing.T) {
	prev := -1.0
	for _, n := range []int{0, 1, 2, 5, 10, 50, 100, 1000, 100000, math.MaxInt32} {
		got := Confidence(n)
		if got < prev {
			t.Fatalf("Confidence(%d) = %.6f decreased from %.6f", n, got, prev)
		}
		if got > 1 {
			t.Fatalf("Confidence(%d) = %.6f exceeds 1", n, got)
		}
		prev = got
	}
}

package engine

import (
	"math"
	"testing"

	"github.com/acssjr/vizu/internal/model"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeVoterStats(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		totalVotes int
		wantAvg    float64
		wantSD     float64
	}{
		{"no history defaults to baseline", nil, 0, 1.5, 0},
		{"single flat vote", []float64{2, 2, 2}, 1, 2.0, 0},
		{"spread values", []float64{0, 3, 0, 3, 0, 3}, 2, 1.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVoterStats(tt.values, tt.totalVotes)
			if !almostEqual(got.Average, tt.wantAvg, 0.0001) {
				t.Errorf("Average = %.4f, want %.4f", got.Average, tt.wantAvg)
			}
			if !almostEqual(got.StdDev, tt.wantSD, 0.0001) {
				t.Errorf("StdDev = %.4f, want %.4f", got.StdDev, tt.wantSD)
			}
		})
	}
}

func TestBias(t *testing.T) {
	tests := []struct {
		name  string
		stats VoterStats
		want  float64
	}{
		{"short history, no correction", VoterStats{Average: 2.9, TotalVotes: 9}, 0},
		{"lenient rater", VoterStats{Average: 2.3, TotalVotes: 40}, 0.8},
		{"harsh rater", VoterStats{Average: 0.9, TotalVotes: 40}, -0.6},
		{"perfectly neutral", VoterStats{Average: 1.5, TotalVotes: 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bias(tt.stats); !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("Bias() = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestRigor(t *testing.T) {
	tests := []struct {
		name  string
		stats VoterStats
		want  float64
	}{
		{"short history, neutral rigor", VoterStats{StdDev: 0.1, TotalVotes: 5}, 1},
		{"typical spread", VoterStats{StdDev: 0.9, TotalVotes: 50}, 1},
		{"clustered rater", VoterStats{StdDev: 0.45, TotalVotes: 50}, 0.5},
		{"wide rater", VoterStats{StdDev: 1.35, TotalVotes: 50}, 1.5},
		{"completely flat rater", VoterStats{StdDev: 0, TotalVotes: 50}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rigor(tt.stats); !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("Rigor() = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestWeight(t *testing.T) {
	tests := []struct {
		name       string
		totalVotes int
		want       float64
	}{
		{"novice", 0, 0.5},
		{"just under ramp", 9, 0.5},
		{"ramp start", 10, 0.7},
		{"mid ramp", 30, 0.85},
		{"ramp end", 50, 1.0},
		{"veteran", 500, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weight(tt.totalVotes); !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("Weight(%d) = %.4f, want %.4f", tt.totalVotes, got, tt.want)
			}
		})
	}
}

func TestNormalize_NoHistoryPassthrough(t *testing.T) {
	// Fewer than 10 votes: no correction applied regardless of history values.
	stats := VoterStats{Average: 2.8, StdDev: 0.1, TotalVotes: 9}
	raw := model.Ratings{Attraction: 3, Trust: 2, Intelligence: 1}

	got := Normalize(raw, stats)

	if got.Bias != 0 {
		t.Errorf("Bias = %.4f, want 0", got.Bias)
	}
	if got.Rigor != 1 {
		t.Errorf("Rigor = %.4f, want 1", got.Rigor)
	}
	if got.Weight != 0.5 {
		t.Errorf("Weight = %.4f, want 0.5", got.Weight)
	}
	if got.Ratings.Attraction != 3 || got.Ratings.Trust != 2 || got.Ratings.Intelligence != 1 {
		t.Errorf("normalized = %+v, want raw values unchanged", got.Ratings)
	}
}

func TestNormalize_LenientRaterCorrectedDown(t *testing.T) {
	// High historical average: positive bias, high raw ratings pulled down.
	stats := VoterStats{Average: 2.6, StdDev: 0.9, TotalVotes: 60}
	raw := model.Ratings{Attraction: 3, Trust: 3, Intelligence: 3}

	got := Normalize(raw, stats)

	if got.Bias <= 0 {
		t.Fatalf("Bias = %.4f, want > 0", got.Bias)
	}
	if got.Ratings.Attraction >= 3 {
		t.Errorf("normalized attraction = %.4f, want < raw 3", got.Ratings.Attraction)
	}
}

func TestNormalize_HarshRaterCorrectedUp(t *testing.T) {
	stats := VoterStats{Average: 0.6, StdDev: 0.9, TotalVotes: 60}
	raw := model.Ratings{Attraction: 0, Trust: 1, Intelligence: 0}

	got := Normalize(raw, stats)

	if got.Bias >= 0 {
		t.Fatalf("Bias = %.4f, want < 0", got.Bias)
	}
	if got.Ratings.Attraction <= 0 {
		t.Errorf("normalized attraction = %.4f, want > raw 0", got.Ratings.Attraction)
	}
}

func TestNormalizeAxis_AlwaysClamped(t *testing.T) {
	tests := []struct {
		name  string
		raw   float64
		bias  float64
		rigor float64
	}{
		{"extreme positive bias", 0, 3, 1},
		{"extreme negative bias", 3, -3, 1},
		{"tiny rigor blows up spread", 3, 0, 0.01},
		{"tiny rigor, low value", 0, 0, 0.01},
		{"zero rigor skips rescale", 3, -2, 0},
		{"huge rigor collapses spread", 0, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAxis(tt.raw, tt.bias, tt.rigor)
			if got < ScaleMin || got > ScaleMax {
				t.Errorf("NormalizeAxis(%.1f, %.1f, %.2f) = %.4f, outside [%.0f, %.0f]",
					tt.raw, tt.bias, tt.rigor, got, ScaleMin, ScaleMax)
			}
		})
	}
}

func TestNormalize_SharedCorrectionAcrossAxes(t *testing.T) {
	// The same bias/rigor applies to each axis independently, so equal raw
	// values must normalize to equal outputs.
	stats := VoterStats{Average: 2.1, StdDev: 0.6, TotalVotes: 80}
	raw := model.Ratings{Attraction: 2, Trust: 2, Intelligence: 2}

	got := Normalize(raw, stats)

	if got.Ratings.Attraction != got.Ratings.Trust || got.Ratings.Trust != got.Ratings.Intelligence {
		t.Errorf("equal raw axes normalized unequally: %+v", got.Ratings)
	}
}

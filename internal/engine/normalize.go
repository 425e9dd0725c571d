package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/acssjr/vizu/internal/model"
)

const (
	// Rating scale bounds.
	ScaleMin = 0.0
	ScaleMax = 3.0

	// Global baseline the correction re-centers around.
	BaselineMean   = 1.5
	BaselineStdDev = 0.9

	// Raters with fewer votes than this get no bias/rigor correction.
	MinHistoryForCorrection = 10

	// Weight ramp: 0.5 below 10 votes, linear from 0.7 at 10 votes
	// to 1.0 at 50 votes, then flat.
	noviceWeight    = 0.5
	rampBaseWeight  = 0.7
	rampSlope       = 0.0075
	fullWeightVotes = 50
)

// VoterStats summarizes a rater's historical rating behavior across all
// axes of all their past votes.
type VoterStats struct {
	Average    float64
	StdDev     float64
	TotalVotes int
}

// ComputeVoterStats derives a rater's statistics from their flattened
// historical axis values. totalVotes is the number of vote records the
// values came from (three axis values per vote). With no history the
// average defaults to the scale midpoint and the stddev to zero.
func ComputeVoterStats(values []float64, totalVotes int) VoterStats {
	if len(values) == 0 || totalVotes == 0 {
		return VoterStats{Average: BaselineMean, StdDev: 0, TotalVotes: 0}
	}
	return VoterStats{
		Average:    stat.Mean(values, nil),
		StdDev:     stat.PopStdDev(values, nil),
		TotalVotes: totalVotes,
	}
}

// NormalizedVote is the output of normalizing one raw vote: the corrected
// per-axis values plus the trust weight and the bias/rigor that produced them.
type NormalizedVote struct {
	Ratings model.NormalizedRatings
	Weight  float64
	Bias    float64
	Rigor   float64
}

// Bias returns the rater's systematic offset from the baseline mean.
// Positive means lenient, negative means harsh. Raters with a short
// history get no correction.
func Bias(s VoterStats) float64 {
	if s.TotalVotes < MinHistoryForCorrection {
		return 0
	}
	return s.Average - BaselineMean
}

// Rigor returns how widely the rater uses the scale relative to the
// baseline spread. Above 1 means wider than typical, below 1 means
// their ratings cluster. Short histories get the neutral value 1.
func Rigor(s VoterStats) float64 {
	if s.TotalVotes < MinHistoryForCorrection {
		return 1
	}
	return s.StdDev / BaselineStdDev
}

// Weight returns the trust weight applied to the rater's normalized vote
// during aggregation, ramping with history size.
func Weight(totalVotes int) float64 {
	switch {
	case totalVotes < MinHistoryForCorrection:
		return noviceWeight
	case totalVotes < fullWeightVotes:
		return rampBaseWeight + float64(totalVotes-MinHistoryForCorrection)*rampSlope
	default:
		return 1.0
	}
}

// NormalizeAxis applies the scalar correction to one raw axis value:
// subtract the bias, rescale the spread around the baseline mean by
// 1/rigor, clamp to the scale.
func NormalizeAxis(raw float64, bias, rigor float64) float64 {
	v := raw - bias
	if rigor != 0 {
		v = BaselineMean + (v-BaselineMean)/rigor
	}
	return clamp(v, ScaleMin, ScaleMax)
}

// Normalize corrects one raw vote for the rater's bias and rigor. The same
// bias/rigor/weight, derived from the rater's overall history, is applied
// independently to each of the three axes.
func Normalize(raw model.Ratings, s VoterStats) NormalizedVote {
	bias := Bias(s)
	rigor := Rigor(s)

	return NormalizedVote{
		Ratings: model.NormalizedRatings{
			Attraction:   NormalizeAxis(float64(raw.Attraction), bias, rigor),
			Trust:        NormalizeAxis(float64(raw.Trust), bias, rigor),
			Intelligence: NormalizeAxis(float64(raw.Intelligence), bias, rigor),
		},
		Weight: Weight(s.TotalVotes),
		Bias:   bias,
		Rigor:  rigor,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

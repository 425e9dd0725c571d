package engine

import "math"

// ConfidenceK controls how fast confidence saturates with vote count:
// roughly 0.63 at 20 votes, 0.92 at 50, 0.99 at 100.
const ConfidenceK = 0.05

// WeightedAverage computes sum(value_i * weight_i) / sum(weight_i).
// Returns 0 for an empty vote set or zero total weight.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for i, v := range values {
		weightedSum += v * weights[i]
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// Confidence maps a vote count onto a saturating 0..1 curve:
// 1 - e^(-k*n). Monotonically increasing, 0 at zero votes, strictly
// below 1 for any finite count.
func Confidence(voteCount int) float64 {
	if voteCount <= 0 {
		return 0
	}
	return 1 - math.Exp(-ConfidenceK*float64(voteCount))
}

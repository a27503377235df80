package fusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// IntegratedSupport weights each principal component row of pc by its
// contribution rate and sums per sensor: score[i] = Σ_k pc[k][i]·rates[k].
// rates must have at least as many entries as pc has rows; extra rates are
// ignored.
func IntegratedSupport(pc *mat.Dense, rates []float64) ([]float64, error) {
	if pc == nil || pc.IsEmpty() {
		return nil, fmt.Errorf("integrated support: principal components: %w", ErrInvalidInput)
	}
	m, n := pc.Dims()
	if len(rates) < m {
		return nil, fmt.Errorf("integrated support: %d rates for %d components: %w",
			len(rates), m, ErrInvalidInput)
	}
	var s mat.VecDense
	s.MulVec(pc.T(), mat.NewVecDense(m, rates[:m:m]))
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = s.AtVec(i)
	}
	return scores, nil
}

// EliminateOutliers zeroes, in place, every score whose magnitude is below
// |faultTolerance·mean(scores)|. It returns the indices it zeroed.
func EliminateOutliers(scores []float64, faultTolerance float64) ([]int, error) {
	n := len(scores)
	if n == 0 {
		return nil, fmt.Errorf("eliminate outliers: %w", ErrInvalidInput)
	}
	if math.IsNaN(faultTolerance) || faultTolerance < 0 || faultTolerance > 1 {
		return nil, fmt.Errorf("eliminate outliers: fault tolerance %v outside [0,1]: %w",
			faultTolerance, ErrInvalidInput)
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	threshold := math.Abs(faultTolerance * sum / float64(n))

	var zeroed []int
	for i, s := range scores {
		if math.Abs(s) < threshold {
			scores[i] = 0
			zeroed = append(zeroed, i)
		}
	}
	return zeroed, nil
}

// Weights normalises scores so they sum to one.
func Weights(scores []float64) ([]float64, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("weights: %w", ErrInvalidInput)
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("weights: score sum=%v: %w", sum, ErrZeroSupport)
	}
	w := make([]float64, len(scores))
	for i, s := range scores {
		w[i] = s / sum
	}
	return w, nil
}

// FusedValue returns Σ weights[i]·values[i].
func FusedValue(weights, values []float64) (float64, error) {
	if len(weights) == 0 || len(values) == 0 {
		return 0, fmt.Errorf("fused value: %w", ErrInvalidInput)
	}
	if len(weights) != len(values) {
		return 0, fmt.Errorf("fused value: %d weights for %d values: %w",
			len(weights), len(values), ErrInvalidInput)
	}
	var out float64
	for i, w := range weights {
		out += w * values[i]
	}
	return out, nil
}

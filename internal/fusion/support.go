package fusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SupportDegree returns exp(-|a-b|): 1 for equal values, tending to 0 as
// they diverge.
func SupportDegree(a, b float64) float64 {
	return math.Exp(-math.Abs(a - b))
}

// SupportMatrix builds the n×n support degree matrix for values. The result
// is symmetric with a unit diagonal.
func SupportMatrix(values []float64) (*mat.SymDense, error) {
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("support matrix: no values: %w", ErrInvalidInput)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("support matrix: value %d is %v: %w", i, v, ErrInvalidInput)
		}
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		d.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, SupportDegree(values[i], values[j]))
		}
	}
	return d, nil
}

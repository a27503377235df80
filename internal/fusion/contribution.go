package fusion

import (
	"fmt"
	"math"
)

// tieTolerance is the distance from p at which a cumulative contribution
// counts as reaching p exactly.
const tieTolerance = 1e-9

// ContributionRates returns each eigenvalue's share of the eigenvalue sum.
func ContributionRates(eigenvalues []float64) ([]float64, error) {
	if len(eigenvalues) == 0 {
		return nil, fmt.Errorf("contribution rates: %w", ErrInvalidInput)
	}
	var sum float64
	for _, v := range eigenvalues {
		sum += v
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("contribution rates: sum=%v: %w", sum, ErrDegenerateSpectrum)
	}
	rates := make([]float64, len(eigenvalues))
	for i, v := range eigenvalues {
		rates[i] = v / sum
	}
	return rates, nil
}

// SelectComponents returns how many leading components to keep for the
// cumulative contribution threshold p in [0, 1].
//
// Rates are accumulated in order. If the running sum reaches p exactly at
// index k, k+1 components are used. If it first overshoots p at index k, the
// overshooting component is dropped and k are used. If p is never reached,
// all components are used. A result of zero is ErrInsufficientContribution.
func SelectComponents(rates []float64, p float64) (int, error) {
	if len(rates) == 0 {
		return 0, fmt.Errorf("select components: no rates: %w", ErrInvalidInput)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("select components: p=%v outside [0,1]: %w", p, ErrInvalidInput)
	}
	m := len(rates)
	var cum float64
	for k, r := range rates {
		cum += r
		if math.Abs(cum-p) <= tieTolerance {
			m = k + 1
			break
		}
		if cum > p {
			m = k
			break
		}
	}
	if m <= 0 {
		return 0, fmt.Errorf("select components: p=%v: %w", p, ErrInsufficientContribution)
	}
	return m, nil
}

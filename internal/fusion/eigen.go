package fusion

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// EigenSystem holds eigenpairs sorted by descending eigenvalue.
// Vectors[k] is the unit eigenvector for Values[k].
type EigenSystem struct {
	Values  []float64
	Vectors [][]float64
}

// Eigen computes all eigenpairs of the symmetric matrix d.
//
// Each eigenvector is oriented so its component sum is non-negative; when
// the sum is zero the last non-zero component is made positive.
func Eigen(d *mat.SymDense) (*EigenSystem, error) {
	if d == nil || d.IsEmpty() {
		return nil, fmt.Errorf("eigen: need a non-empty symmetric matrix: %w", ErrInvalidInput)
	}
	n := d.SymmetricDim()

	var es mat.EigenSym
	if ok := es.Factorize(d, true); !ok {
		return nil, fmt.Errorf("eigen: %dx%d factorization failed: %w", n, n, ErrEigenNoConvergence)
	}
	values := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// gonum returns ascending order; callers want descending.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return values[order[x]] > values[order[y]]
	})

	out := &EigenSystem{
		Values:  make([]float64, n),
		Vectors: make([][]float64, n),
	}
	for k, col := range order {
		out.Values[k] = values[col]
		vec := mat.Col(nil, col, &vecs)
		orient(vec)
		out.Vectors[k] = vec
	}
	return out, nil
}

// orientTolerance treats tiny component sums as zero.
const orientTolerance = 1e-12

func orient(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x
	}
	flip := sum < -orientTolerance
	if math.Abs(sum) <= orientTolerance {
		for i := len(vec) - 1; i >= 0; i-- {
			if vec[i] != 0 {
				flip = vec[i] < 0
				break
			}
		}
	}
	if flip {
		for i := range vec {
			vec[i] = -vec[i]
		}
	}
}

package fusion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PrincipalComponents projects the support matrix d onto the first m
// eigenvectors: PC[k][j] = Σ_i vectors[k][i]·d[i][j]. The result is m×n.
func PrincipalComponents(d *mat.SymDense, vectors [][]float64, m int) (*mat.Dense, error) {
	if d == nil || d.IsEmpty() {
		return nil, fmt.Errorf("principal components: support matrix: %w", ErrInvalidInput)
	}
	n := d.SymmetricDim()
	if m <= 0 || m > len(vectors) {
		return nil, fmt.Errorf("principal components: m=%d with %d vectors: %w", m, len(vectors), ErrInvalidInput)
	}
	vm := mat.NewDense(m, n, nil)
	for k := 0; k < m; k++ {
		if len(vectors[k]) != n {
			return nil, fmt.Errorf("principal components: vector %d has %d entries, want %d: %w",
				k, len(vectors[k]), n, ErrInvalidInput)
		}
		vm.SetRow(k, vectors[k])
	}
	pc := mat.NewDense(m, n, nil)
	pc.Mul(vm, d)
	return pc, nil
}

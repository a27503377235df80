package main

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/obsidianstack/sensorfusion/internal/fusion"
)

type scenario struct {
	name  string
	check func() error
}

var scenarios = []scenario{
	{"support degree matrix", checkSupportMatrix},
	{"eigensystem", checkEigen},
	{"contribution rates", checkContribution},
	{"integrated support score", checkIntegratedSupport},
	{"outlier elimination", checkOutliers},
	{"fused value", checkFusedValue},
}

// selfCheck runs every scenario, printing one line each. It reports whether
// all of them passed.
func selfCheck(w io.Writer) bool {
	ok := true
	for i, s := range scenarios {
		label := fmt.Sprintf("Scenario %c - %s", 'A'+i, s.name)
		if err := s.check(); err != nil {
			fmt.Fprintf(w, "%-45s FAILED: %v\n", label, err)
			ok = false
			continue
		}
		fmt.Fprintf(w, "%-45s PASSED\n", label)
	}
	return ok
}

func checkSupportMatrix() error {
	d, err := fusion.SupportMatrix([]float64{1.2, 1.3, 1.4})
	if err != nil {
		return err
	}
	want := []float64{1, 0.9048, 0.8187, 0.9048, 1, 0.9048, 0.8187, 0.9048, 1}
	got := make([]float64, 0, len(want))
	for i := 0; i < 3; i++ {
		got = append(got, mat.Row(nil, i, d)...)
	}
	return closeAll(got, want, 1e-4)
}

func checkEigen() error {
	es, err := fusion.Eigen(mat.NewSymDense(2, []float64{1, 10, 10, 1}))
	if err != nil {
		return err
	}
	if err := closeAll(es.Values, []float64{11, -9}, 1e-6); err != nil {
		return fmt.Errorf("eigenvalues: %w", err)
	}
	h := math.Sqrt2 / 2
	if err := closeAll(es.Vectors[0], []float64{h, h}, 1e-6); err != nil {
		return fmt.Errorf("first eigenvector: %w", err)
	}
	if err := closeAll(es.Vectors[1], []float64{-h, h}, 1e-6); err != nil {
		return fmt.Errorf("second eigenvector: %w", err)
	}
	return nil
}

func checkContribution() error {
	rates, err := fusion.ContributionRates([]float64{1.00005, 0.999955})
	if err != nil {
		return err
	}
	return closeAll(rates, []float64{0.500023, 0.499977}, 1e-5)
}

func checkIntegratedSupport() error {
	pc := mat.NewDense(3, 4, []float64{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3})
	scores, err := fusion.IntegratedSupport(pc, []float64{0.1, 0.2, 0.3})
	if err != nil {
		return err
	}
	return closeAll(scores, []float64{1.4, 1.4, 1.4, 1.4}, 1e-9)
}

func checkOutliers() error {
	scores := []float64{10, 1, 3, 5}
	if _, err := fusion.EliminateOutliers(scores, 0.7); err != nil {
		return err
	}
	// mean 4.75, threshold 3.325: both 1 and 3 are removed.
	return closeAll(scores, []float64{10, 0, 0, 5}, 0)
}

func checkFusedValue() error {
	v, err := fusion.FusedValue([]float64{0.5, 0, 0.3, 0.2}, []float64{10, 1, 5, 5})
	if err != nil {
		return err
	}
	return closeAll([]float64{v}, []float64{7.5}, 1e-9)
}

func closeAll(got, want []float64, tol float64) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			return fmt.Errorf("[%d] got %.6f, want %.6f", i, got[i], want[i])
		}
	}
	return nil
}

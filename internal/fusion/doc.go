// Package fusion fuses same-timestamp sensor values into one consensus value
// using a principal-component weighting of their mutual support.
//
// The pipeline, one function per step:
//
//	SupportMatrix        D[i][j] = exp(-|x_i - x_j|)
//	Eigen                symmetric eigendecomposition (gonum mat.EigenSym), sorted descending
//	ContributionRates    rate[k] = λ_k / Σλ
//	SelectComponents     number of leading components m for threshold p
//	PrincipalComponents  PC[k][j] = Σ_i v_k[i]·D[i][j], k < m
//	IntegratedSupport    score[i] = Σ_k PC[k][i]·rate[k]
//	EliminateOutliers    zero scores with |score| < |q·mean(score)|
//	Weights              w[i] = score[i] / Σscore
//	FusedValue           Σ w[i]·x[i]
//
// Engine.Fuse chains the steps for a slice of readings. Every step validates
// its own inputs and returns one of the sentinel errors in errors.go; no step
// returns partial output with a nil error. All intermediate matrices are
// local to a single call.
package fusion

package fusion

import "errors"

// Sentinel errors returned by the fusion steps. Callers match them with
// errors.Is; steps wrap them with the step name for context.
var (
	// ErrInvalidInput is returned for nil, empty or mis-shaped arguments.
	ErrInvalidInput = errors.New("fusion: invalid input")

	// ErrNoValidData is returned by Engine.Fuse when there are no valid
	// readings to fuse.
	ErrNoValidData = errors.New("fusion: no valid data")

	// ErrInsufficientContribution is returned when component selection
	// yields zero components.
	ErrInsufficientContribution = errors.New("fusion: insufficient contribution rate")

	// ErrZeroSupport is returned when the integrated support scores sum to
	// zero, so no weights can be formed.
	ErrZeroSupport = errors.New("fusion: integrated support sums to zero")

	// ErrDegenerateSpectrum is returned when the eigenvalues sum to zero or
	// to a non-finite value.
	ErrDegenerateSpectrum = errors.New("fusion: eigenvalue sum is zero or non-finite")

	// ErrEigenNoConvergence is returned when the symmetric eigensolver
	// reports that it did not converge.
	ErrEigenNoConvergence = errors.New("fusion: eigen decomposition did not converge")
)

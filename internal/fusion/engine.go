package fusion

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// Options configures one Engine.
type Options struct {
	// FaultTolerance is the q-support ratio in [0,1] used by
	// EliminateOutliers. 0 disables elimination.
	FaultTolerance float64

	// ContributionThreshold is the cumulative contribution ratio p in [0,1]
	// used by SelectComponents.
	ContributionThreshold float64
}

// DefaultOptions keeps every sensor (q=0) and every component (p=1).
func DefaultOptions() Options {
	return Options{
		FaultTolerance:        0,
		ContributionThreshold: 1,
	}
}

// Validate reports whether the options are usable.
func (o Options) Validate() error {
	if math.IsNaN(o.FaultTolerance) || o.FaultTolerance < 0 || o.FaultTolerance > 1 {
		return fmt.Errorf("fault tolerance %v outside [0,1]: %w", o.FaultTolerance, ErrInvalidInput)
	}
	if math.IsNaN(o.ContributionThreshold) || o.ContributionThreshold < 0 || o.ContributionThreshold > 1 {
		return fmt.Errorf("contribution threshold %v outside [0,1]: %w", o.ContributionThreshold, ErrInvalidInput)
	}
	return nil
}

// Result is the outcome of one successful fusion cycle. All slices are
// indexed like Sensors.
type Result struct {
	Value float64

	Sensors     []string
	Values      []float64
	Eigenvalues []float64
	Rates       []float64
	Components  int
	Scores      []float64 // after outlier elimination
	Weights     []float64
	Eliminated  []string
}

// Weight returns the weight assigned to the named sensor.
func (r *Result) Weight(name string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	for i, s := range r.Sensors {
		if s == name {
			return r.Weights[i], true
		}
	}
	return 0, false
}

// Engine runs the fusion pipeline with fixed Options. It holds no state
// between calls.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine for opts after validating them.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("fusion: %w", err)
	}
	return &Engine{opts: opts}, nil
}

// Fuse runs every step over readings and returns the fused result.
// An empty readings slice yields ErrNoValidData.
func (e *Engine) Fuse(readings []types.Reading) (*Result, error) {
	if len(readings) == 0 {
		return nil, ErrNoValidData
	}
	res := &Result{
		Sensors: make([]string, len(readings)),
		Values:  make([]float64, len(readings)),
	}
	for i, r := range readings {
		res.Sensors[i] = r.Name
		res.Values[i] = r.Value
	}

	d, err := SupportMatrix(res.Values)
	if err != nil {
		return nil, err
	}
	es, err := Eigen(d)
	if err != nil {
		return nil, err
	}
	res.Eigenvalues = es.Values

	if res.Rates, err = ContributionRates(es.Values); err != nil {
		return nil, err
	}
	if res.Components, err = SelectComponents(res.Rates, e.opts.ContributionThreshold); err != nil {
		return nil, err
	}
	pc, err := PrincipalComponents(d, es.Vectors, res.Components)
	if err != nil {
		return nil, err
	}
	if res.Scores, err = IntegratedSupport(pc, res.Rates); err != nil {
		return nil, err
	}
	zeroed, err := EliminateOutliers(res.Scores, e.opts.FaultTolerance)
	if err != nil {
		return nil, err
	}
	for _, i := range zeroed {
		res.Eliminated = append(res.Eliminated, res.Sensors[i])
	}
	if res.Weights, err = Weights(res.Scores); err != nil {
		return nil, err
	}
	if res.Value, err = FusedValue(res.Weights, res.Values); err != nil {
		return nil, err
	}

	slog.Debug("fusion: cycle fused",
		"sensors", len(readings),
		"components", res.Components,
		"eliminated", len(res.Eliminated),
		"value", res.Value,
	)
	return res, nil
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/obsidianstack/sensorfusion/internal/classify"
	"github.com/obsidianstack/sensorfusion/internal/config"
	"github.com/obsidianstack/sensorfusion/internal/fusion"
	"github.com/obsidianstack/sensorfusion/internal/store"
	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// Params are the run settings echoed into every report.
type Params struct {
	High           *float64
	Low            *float64
	StuckThreshold *int
	QSupport       int // percent
	PrincipalRatio int // percent
}

// Cycle is the outcome of one closed batch.
type Cycle struct {
	RunID  string
	Time   int // minutes since midnight
	Params Params

	// Result is nil when Err is set.
	Result *fusion.Result
	Err    error

	// Groups holds each group's readings after the cycle, in store order.
	Groups map[types.Group][]types.Reading
}

// Reason classifies the cycle outcome for logs and metrics labels.
func (c *Cycle) Reason() string {
	return Reason(c.Err)
}

// Reason maps a fusion error to a short snake_case label. A nil error is "ok".
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, fusion.ErrNoValidData):
		return "no_valid_data"
	case errors.Is(err, fusion.ErrInsufficientContribution):
		return "insufficient_contribution"
	case errors.Is(err, fusion.ErrZeroSupport):
		return "zero_support"
	case errors.Is(err, fusion.ErrEigenNoConvergence):
		return "eigen_no_convergence"
	case errors.Is(err, fusion.ErrDegenerateSpectrum):
		return "degenerate_spectrum"
	case errors.Is(err, fusion.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

// Sink receives every closed cycle.
type Sink interface {
	Emit(c *Cycle) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(c *Cycle) error

// Emit calls f(c).
func (f SinkFunc) Emit(c *Cycle) error { return f(c) }

// Source yields records in input order and io.EOF at the end.
// *ingest.Reader satisfies it.
type Source interface {
	Next() (types.Record, error)
}

// Records returns a Source over a fixed slice.
func Records(recs []types.Record) Source {
	return &sliceSource{recs: recs}
}

type sliceSource struct {
	recs []types.Record
	i    int
}

func (s *sliceSource) Next() (types.Record, error) {
	if s.i >= len(s.recs) {
		return types.Record{}, io.EOF
	}
	r := s.recs[s.i]
	s.i++
	return r, nil
}

// Summary totals one Run.
type Summary struct {
	RunID    string
	Records  int
	Cycles   int
	Failures map[string]int

	// Last is the final cycle, nil when the input was empty.
	Last *Cycle
}

// Failed returns the number of cycles that produced no fused value.
func (s *Summary) Failed() int {
	n := 0
	for _, v := range s.Failures {
		n += v
	}
	return n
}

// Runner owns the classifier, fusion engine and sinks for a run.
type Runner struct {
	params     Params
	classifier *classify.Classifier
	engine     *fusion.Engine
	sinks      []Sink
}

// New builds a Runner from a validated config.
func New(cfg *config.Config, sinks ...Sink) (*Runner, error) {
	engine, err := fusion.NewEngine(fusion.Options{
		FaultTolerance:        cfg.Fusion.FaultTolerance(),
		ContributionThreshold: cfg.Fusion.ContributionThreshold(),
	})
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	return &Runner{
		params: Params{
			High:           cfg.Limits.High,
			Low:            cfg.Limits.Low,
			StuckThreshold: cfg.StuckThreshold,
			QSupport:       cfg.Fusion.QSupportValue,
			PrincipalRatio: cfg.Fusion.PrincipalComponentRatio,
		},
		classifier: classify.New(classify.Limits{High: cfg.Limits.High, Low: cfg.Limits.Low}),
		engine:     engine,
		sinks:      sinks,
	}, nil
}

// Run consumes src until io.EOF, closing a cycle at each timestamp change.
// The returned Summary is valid even when err is non-nil.
func (r *Runner) Run(ctx context.Context, src Source) (*Summary, error) {
	sum := &Summary{
		RunID:    uuid.NewString(),
		Failures: map[string]int{},
	}
	log := slog.With("run_id", sum.RunID)
	log.Info("runner: run started")

	st := store.New()
	var batch []types.Record

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		c, err := r.cycle(st, batch, sum.RunID, log)
		batch = batch[:0]
		if err != nil {
			return err
		}
		sum.Cycles++
		sum.Last = c
		if c.Err != nil {
			sum.Failures[c.Reason()]++
		}
		for _, s := range r.sinks {
			if err := s.Emit(c); err != nil {
				return fmt.Errorf("runner: emit cycle %s: %w", types.ClockString(c.Time), err)
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("runner: read: %w", err)
		}
		sum.Records++

		if len(batch) > 0 && rec.Time != batch[0].Time {
			if err := flush(); err != nil {
				return sum, err
			}
		}
		batch = append(batch, rec)
	}
	if err := flush(); err != nil {
		return sum, err
	}

	log.Info("runner: run finished",
		"records", sum.Records,
		"cycles", sum.Cycles,
		"failed", sum.Failed(),
	)
	return sum, nil
}

// cycle routes one batch, detects stuck sensors and fuses the Valid group.
// A fusion failure is recorded on the Cycle; only store errors are returned.
func (r *Runner) cycle(st *store.Store, batch []types.Record, runID string, log *slog.Logger) (*Cycle, error) {
	now := batch[0].Time
	for _, rec := range batch {
		if _, err := r.classifier.Route(st, rec); err != nil {
			return nil, fmt.Errorf("runner: route %q: %w", rec.Name, err)
		}
	}

	if r.params.StuckThreshold != nil {
		moved, err := classify.DetectStuck(st, now, *r.params.StuckThreshold)
		if err != nil {
			return nil, fmt.Errorf("runner: detect stuck: %w", err)
		}
		for _, name := range moved {
			log.Info("runner: sensor stuck", "sensor", name, "time", types.ClockString(now))
		}
	}

	c := &Cycle{
		RunID:  runID,
		Time:   now,
		Params: r.params,
		Groups: make(map[types.Group][]types.Reading, len(types.Groups)),
	}
	c.Result, c.Err = r.engine.Fuse(st.Snapshot(types.Valid))
	for _, g := range types.Groups {
		c.Groups[g] = st.Snapshot(g)
	}

	if c.Err != nil {
		log.Warn("runner: cycle produced no fused value",
			"time", types.ClockString(now),
			"reason", c.Reason(),
			"err", c.Err,
		)
	} else {
		log.Debug("runner: cycle fused",
			"time", types.ClockString(now),
			"value", c.Result.Value,
			"components", c.Result.Components,
		)
	}
	return c, nil
}

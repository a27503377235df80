package classify

import (
	"fmt"
	"log/slog"

	"github.com/obsidianstack/sensorfusion/internal/store"
	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// Limits holds the optional range bounds for a valid reading.
// A nil bound is not checked.
type Limits struct {
	High *float64
	Low  *float64
}

// Classifier applies Limits to records and staleness rules to the store.
type Classifier struct {
	limits Limits
}

// New returns a Classifier for the given limits.
func New(limits Limits) *Classifier {
	return &Classifier{limits: limits}
}

// GroupFor returns the group a fresh value belongs to. It never returns
// types.Stuck.
func (c *Classifier) GroupFor(value float64) types.Group {
	if c.limits.High != nil && value > *c.limits.High {
		return types.OutOfRange
	}
	if c.limits.Low != nil && value < *c.limits.Low {
		return types.OutOfRange
	}
	return types.Valid
}

// Route removes any existing reading for rec.Name from whichever group holds
// it, then inserts rec into the group chosen by GroupFor. It returns the
// destination group.
func (c *Classifier) Route(s *store.Store, rec types.Record) (types.Group, error) {
	if prev, _, ok := s.Find(rec.Name); ok {
		if err := s.Remove(prev, rec.Name); err != nil {
			return 0, fmt.Errorf("classify: route %q: %w", rec.Name, err)
		}
	}
	g := c.GroupFor(rec.Value)
	if _, err := s.Upsert(g, rec.Name, rec.Time, rec.Value); err != nil {
		return 0, fmt.Errorf("classify: route %q: %w", rec.Name, err)
	}
	return g, nil
}

// DetectStuck moves every valid or out-of-range reading whose last update
// satisfies reading.Time+threshold < now into the stuck group. It returns
// the names moved, in scan order.
func DetectStuck(s *store.Store, now, threshold int) ([]string, error) {
	var moved []string
	for _, g := range []types.Group{types.Valid, types.OutOfRange} {
		// Iterate over a copy; Transfer mutates the live group.
		for _, r := range s.Snapshot(g) {
			if r.Time+threshold >= now {
				continue
			}
			if err := s.Transfer(g, types.Stuck, r.Name); err != nil {
				slog.Error("classify: could not move sensor to stuck",
					"sensor", r.Name, "from", g.String(), "err", err)
				return moved, fmt.Errorf("classify: detect stuck: %w", err)
			}
			moved = append(moved, r.Name)
		}
	}
	return moved, nil
}

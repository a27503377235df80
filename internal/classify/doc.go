// Package classify routes incoming records into the store's valid or
// out-of-range group based on the configured limits, and moves sensors that
// have stopped reporting into the stuck group.
package classify

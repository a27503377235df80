// Package store holds the per-run sensor state: three ordered groups of
// readings (valid, out of range, stuck) keyed by sensor name. A sensor name
// appears in at most one group at a time; callers that move a sensor use
// Transfer or Remove followed by Upsert.
//
// The Store is owned by a single runner and is not safe for concurrent use.
package store

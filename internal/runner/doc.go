// Package runner drives fusion cycles over a record stream.
//
// Records sharing a timestamp form one batch. When the timestamp changes,
// or the stream ends, the batch is closed:
//
//  1. every record is routed into the store by the classifier
//  2. stale readings are moved to Stuck (when a threshold is configured)
//  3. the Valid group is fused
//  4. a Cycle is handed to each Sink
//
// A failed fusion does not stop the run: the Cycle carries the error and
// the report shows a sentinel. Only sink and source errors abort Run.
// Each Run uses a fresh store and a fresh run ID.
package runner

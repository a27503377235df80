// Package report renders fusion cycles.
//
// TextWriter appends the human-readable cycle report: parameters, the fused
// value or a sentinel, and a table of every sensor in Valid, OOR, Stuck
// order. MetricsWriter keeps the last cycle and run totals and writes them
// as a Prometheus text-exposition snapshot, suitable for the node_exporter
// textfile collector.
//
// Both satisfy runner.Sink.
package report

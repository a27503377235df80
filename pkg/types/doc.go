// Package types defines the value types shared by the ingest, store,
// classify, fusion and report packages. They are plain data with no
// behaviour beyond formatting helpers.
package types

// Package results holds the execution data model shared by the runner and
// the report renderers: one TestResult per executed test and a Summary that
// aggregates a run.
//
// JSON field names are snake_case and timestamps serialize as RFC 3339
// strings, or null when unset.
package results

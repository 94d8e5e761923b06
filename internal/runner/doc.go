// Package runner executes generated test suites through an external engine
// (pytest by default) and turns its textual output into results.Summary.
//
// The engine runs as a subprocess with verbose, short-traceback flags and a
// per-test timeout; the whole invocation is bounded by Options.Timeout.
// Launch failures, timeouts and engine usage errors are recorded in
// Summary.Errors. Failing tests are ordinary results.
//
// ParseOutput is a text scraper over pytest's verbose format. The format is
// not under this module's control; the parser is kept in one place so that a
// drift in pytest output only touches this package.
package runner

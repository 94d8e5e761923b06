// Package logging provides subsystem-tagged structured logging for specprobe.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so that output from the parsers, the synthesizer, the runner and the
// language-model client can be told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("SpecParser", "Loaded %d endpoints from %s", n, path)
//	logging.Error("Runner", err, "pytest could not be started")
//
// Logs are written to stderr so that command output on stdout stays clean
// for piping (for example `specprobe endpoints -o json | jq`).
package logging

// Package llm is a small client for a locally hosted Ollama server and a
// generator that asks it to draft pytest modules.
//
// Every call is bounded by a timeout and never retried. Failures are logged
// and surface as empty strings, so callers decide whether an empty draft is
// fatal.
package llm

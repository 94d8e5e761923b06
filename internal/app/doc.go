// Package app bootstraps specprobe and runs its pipelines.
//
// NewApplication configures logging, loads the effective configuration
// (defaults, optional YAML file, .env, environment) and wires the
// collaborators every command needs. The pipelines are then exposed as
// methods:
//
//   - Generate: OpenAPI document (+ optional stories) → test cases → pytest
//     modules and the test specification document
//   - MockData: sample request/response payloads written to mock_data.json
//   - RunTests / WriteReports: execute generated modules and render the
//     HTML, Markdown and JSON reports
//   - GenerateAI: language-model authored tests for one resource
//   - Check: prerequisite report for the AI workflow
//   - Full: check, mock data, AI generation, run, reports
//
// The long-running modes (ServeMock and Watch) stop when their context is
// cancelled; commands derive that context from SIGINT/SIGTERM.
package app

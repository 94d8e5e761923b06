// Package config provides configuration management for specprobe.
//
// Configuration is resolved in layers, later layers winning:
//
//  1. built-in defaults (see Default)
//  2. an optional YAML file passed with --config
//  3. a .env file in the working directory (never overrides real variables)
//  4. environment variables such as API_BASE_URL, AUTH_TOKEN, OUTPUT_DIR,
//     GENERATE_SECURITY_TESTS, OLLAMA_MODEL or RUNNER_TIMEOUT
//
// Durations may be given as Go durations ("90s") or as a bare number of
// seconds, matching the integer timeouts older .env files use.
//
// # File Format
//
//	api:
//	  baseURL: http://localhost:8080
//	  timeout: 30s
//	auth:
//	  header: Authorization
//	  scheme: Bearer
//	output:
//	  dir: ./generated_tests
//	generator:
//	  securityTests: true
//	  performanceSLAMs: 200
//	runner:
//	  command: [pytest]
//	  timeout: 10m
//	llm:
//	  baseURL: http://localhost:11434
//	  model: llama3
//
// Validate reports every invalid field at once as ValidationErrors.
package config

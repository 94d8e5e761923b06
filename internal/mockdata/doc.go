// Package mockdata derives deterministic sample payloads from OpenAPI
// schemas. The samples feed generated test inputs, the mock server's
// responses and the mock_data.json artifact.
package mockdata

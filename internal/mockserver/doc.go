// Package mockserver serves every endpoint of an OpenAPI document with
// sample data so that generated test suites have something to run against.
//
// Requests to secured operations are checked against a small set of well
// known tokens (expired-token, invalid-token, readonly-token) that the
// generated security tests send. Created resources are kept in an in-memory
// store with a TTL so that a POST followed by a GET of the new id round
// trips. Request counts are exported on /metrics.
package mockserver

// Package scenario expands OpenAPI endpoints into test-case definitions.
//
// Every endpoint yields, in order: a happy-path case, three edge cases, the
// applicable error cases and four security cases. Integration and
// performance cases are available but disabled by default. Error statuses
// 400, 401, 403 and 404 are always emitted, even when the operation does not
// document them; 409 and 500 only when documented.
//
// Test ids come from an explicit Counter so that separate runs never share
// state.
package scenario

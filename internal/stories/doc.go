// Package stories parses user-story Markdown into stories and their
// Given/When/Then acceptance criteria.
//
// A story starts at a "## Story N: Title" (or "## User Story N: Title")
// heading and runs to the next one. Criteria must be written as
//
//	1. **Given** a valid payload, **When** POST /agents is called, **Then** a 201 is returned.
//
// The bold markers are required. Lines that mention Given, When and Then
// without them are dropped from the model and reported through
// Model.Diagnostics and a WARN log entry.
package stories

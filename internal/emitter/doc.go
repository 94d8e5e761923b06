// Package emitter turns synthesized test cases into files: executable
// pytest modules and a Markdown specification document.
//
// Both outputs are rendered from embedded text/template files with the sprig
// function set. Generated modules read their target from API_BASE_URL (or
// API_URL) and their credentials from AUTH_HEADER, AUTH_SCHEME and
// AUTH_TOKEN, falling back to the values baked in through ModuleOptions.
package emitter

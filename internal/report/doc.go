// Package report renders an execution summary as HTML, Markdown and JSON.
//
// Rendering is pure: the only input besides the summary is Options, which
// carries the report title and the clock used for the "Generated" line.
// WriteAll writes all three formats next to each other and keeps going when
// one of them fails.
package report

package openapi

import (
	"fmt"
	"strings"
)

// MalformedSpecError reports a document that is not a usable OpenAPI 3.x
// description. Problems lists every issue found, not just the first.
type MalformedSpecError struct {
	Path     string
	Problems []string
}

func (e *MalformedSpecError) Error() string {
	name := e.Path
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("malformed OpenAPI specification %s: %s", name, strings.Join(e.Problems, "; "))
}

func (e *MalformedSpecError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// UnsupportedFormatError is returned for files that are neither YAML nor JSON.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported specification format %q for %s (expected .yaml, .yml or .json)", e.Extension, e.Path)
}

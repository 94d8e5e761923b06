package openapi

import (
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Methods lists the recognised HTTP methods in extraction order.
var Methods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Info is the document's info object.
type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Server is one entry of the servers list.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Parameter is an operation or path-level parameter.
type Parameter struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Schema      Schema `json:"-"`
}

// Response is a documented response for one status code.
type Response struct {
	Description string `json:"description,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Schema      Schema `json:"-"`
}

// SecurityRequirement maps a security scheme name to required scopes.
type SecurityRequirement map[string][]string

// Schemes returns the scheme names in sorted order.
func (r SecurityRequirement) Schemes() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint is one (path, method) operation.
type Endpoint struct {
	Path               string                                  `json:"path"`
	Method             string                                  `json:"method"`
	OperationID        string                                  `json:"operationId"`
	Summary            string                                  `json:"summary,omitempty"`
	Description        string                                  `json:"description,omitempty"`
	Tags               []string                                `json:"tags,omitempty"`
	Parameters         []Parameter                             `json:"parameters,omitempty"`
	RequestBody        *Schema                                 `json:"-"`
	RequestContentType string                                  `json:"requestContentType,omitempty"`
	Responses          *orderedmap.OrderedMap[string, Response] `json:"responses"`
	Security           []SecurityRequirement                   `json:"security,omitempty"`
	Deprecated         bool                                    `json:"deprecated,omitempty"`

	// securityDeclared distinguishes "security: []" (explicitly public) from
	// an operation that inherits the document-level requirement.
	securityDeclared bool
}

// Key returns the natural key "METHOD path".
func (e Endpoint) Key() string {
	return endpointKey(e.Path, e.Method)
}

func endpointKey(path, method string) string {
	return strings.ToUpper(method) + " " + path
}

// Name is the human label used for test names: the summary, or the path when
// the operation has none.
func (e Endpoint) Name() string {
	if strings.TrimSpace(e.Summary) != "" {
		return e.Summary
	}
	return e.Path
}

// DocumentedStatuses returns the numeric response codes in ascending order.
// Keys such as "default" or "4XX" are skipped.
func (e Endpoint) DocumentedStatuses() []int {
	var codes []int
	if e.Responses == nil {
		return codes
	}
	for pair := e.Responses.Oldest(); pair != nil; pair = pair.Next() {
		code, err := strconv.Atoi(pair.Key)
		if err != nil {
			continue
		}
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Documents reports whether the status code is an explicit response key.
func (e Endpoint) Documents(status int) bool {
	if e.Responses == nil {
		return false
	}
	_, ok := e.Responses.Get(strconv.Itoa(status))
	return ok
}

// Response returns the documented response for a status code.
func (e Endpoint) Response(status int) (Response, bool) {
	if e.Responses == nil {
		return Response{}, false
	}
	return e.Responses.Get(strconv.Itoa(status))
}

// PathParameters returns the names of {placeholders} in the path, in order.
func (e Endpoint) PathParameters() []string {
	var names []string
	rest := e.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, rest[start+1:start+end])
		rest = rest[start+end+1:]
	}
}

// Resource returns the first static path segment, e.g. "agents" for
// "/agents/{id}". Leading "api" and version segments ("v1") are skipped and
// the root path maps to "root".
func (e Endpoint) Resource() string {
	for _, segment := range strings.Split(e.Path, "/") {
		if segment == "" || strings.HasPrefix(segment, "{") || segment == "api" || isVersionSegment(segment) {
			continue
		}
		return segment
	}
	return "root"
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(segment[1:])
	return err == nil
}

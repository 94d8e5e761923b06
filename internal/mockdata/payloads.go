package mockdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"specprobe/internal/openapi"
	"specprobe/pkg/logging"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MockDataFile is the file name written by WriteFile's callers.
const MockDataFile = "mock_data.json"

// Payload is the sample traffic for one endpoint.
type Payload struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Request  any    `json:"request,omitempty"`
	Response any    `json:"response,omitempty"`
}

// SuccessStatus returns the lowest documented 2xx status, or the method's
// conventional one (201 POST, 204 DELETE, 200 otherwise).
func SuccessStatus(ep openapi.Endpoint) int {
	for _, code := range ep.DocumentedStatuses() {
		if code >= 200 && code < 300 {
			return code
		}
	}
	switch ep.Method {
	case "POST":
		return 201
	case "DELETE":
		return 204
	}
	return 200
}

// RequestSample returns an example request body, or nil when the endpoint
// takes none.
func (g *Generator) RequestSample(ep openapi.Endpoint) any {
	if ep.RequestBody == nil {
		return nil
	}
	return g.Sample(*ep.RequestBody)
}

// ResponseSample returns an example body for a documented status, or nil.
func (g *Generator) ResponseSample(ep openapi.Endpoint, status int) any {
	resp, ok := ep.Response(status)
	if !ok || resp.Schema.IsZero() {
		return nil
	}
	return g.Sample(resp.Schema)
}

// Payloads builds a payload for every endpoint, keyed by "METHOD path" in
// endpoint order.
func Payloads(spec *openapi.Spec) *orderedmap.OrderedMap[string, Payload] {
	g := NewGenerator(spec)
	out := orderedmap.New[string, Payload]()
	for _, ep := range spec.Endpoints() {
		status := SuccessStatus(ep)
		out.Set(ep.Key(), Payload{
			Method:   ep.Method,
			Path:     ep.Path,
			Status:   status,
			Request:  g.RequestSample(ep),
			Response: g.ResponseSample(ep, status),
		})
	}
	return out
}

// WriteFile writes payloads as indented JSON, creating parent directories.
func WriteFile(path string, payloads *orderedmap.OrderedMap[string, Payload]) error {
	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mock data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("MockData", "Wrote mock data for %d endpoints to %s", payloads.Len(), path)
	return nil
}

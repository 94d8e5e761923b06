package openapi

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Spec {
	t.Helper()
	spec, err := Parse(filepath.Join("testdata", "agents.yaml"))
	require.NoError(t, err)
	return spec
}

func TestParse_EndpointOrder(t *testing.T) {
	spec := loadFixture(t)

	var keys []string
	for _, ep := range spec.Endpoints() {
		keys = append(keys, ep.Key())
	}
	// methods follow the fixed order, not the document order
	assert.Equal(t, []string{
		"GET /agents",
		"POST /agents",
		"GET /agents/{id}",
		"DELETE /agents/{id}",
		"GET /health",
	}, keys)
}

func TestParse_InfoAndServers(t *testing.T) {
	spec := loadFixture(t)

	assert.Equal(t, "3.0.3", spec.Version())
	assert.Equal(t, "Agent Commission API", spec.Info().Title)
	assert.Equal(t, "1.0.0", spec.Info().Version)
	require.Len(t, spec.Servers(), 1)
	assert.Equal(t, "http://localhost:8080/api", spec.Servers()[0].URL)
	assert.Equal(t, filepath.Join("testdata", "agents.yaml"), spec.Source())
}

func TestParse_ResolvesReferences(t *testing.T) {
	spec := loadFixture(t)

	post, ok := spec.EndpointByKey("/agents", "post")
	require.True(t, ok)
	assert.Equal(t, "createAgent", post.OperationID)
	assert.Equal(t, []string{"agents"}, post.Tags)
	require.NotNil(t, post.RequestBody)
	assert.Equal(t, "application/json", post.RequestContentType)

	body := spec.Resolve(*post.RequestBody)
	assert.Equal(t, "object", body.Type())
	assert.Equal(t, []string{"name", "email"}, body.Required())

	var names []string
	for _, p := range body.Properties() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"name", "email", "region"}, names)

	list, ok := spec.EndpointByKey("/agents", "GET")
	require.True(t, ok)
	require.Len(t, list.Parameters, 1)
	assert.Equal(t, "page", list.Parameters[0].Name)
	assert.Equal(t, "integer", list.Parameters[0].Schema.Type())
}

func TestParse_PathLevelParametersAndDefaults(t *testing.T) {
	spec := loadFixture(t)

	get, ok := spec.EndpointByKey("/agents/{id}", "GET")
	require.True(t, ok)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.True(t, get.Parameters[0].Required)
	assert.Equal(t, "get_/agents/{id}", get.OperationID)
	assert.Equal(t, "Get agent", get.Name())
	assert.Equal(t, []string{"id"}, get.PathParameters())
	assert.Equal(t, "agents", get.Resource())

	// no summary on the operation, so the path names it
	del, ok := spec.EndpointByKey("/agents/{id}", "DELETE")
	require.True(t, ok)
	assert.Equal(t, "/agents/{id}", del.Name())
	require.Len(t, del.Parameters, 1)
}

func TestEndpoint_DocumentedStatuses(t *testing.T) {
	spec := loadFixture(t)

	get, _ := spec.EndpointByKey("/agents/{id}", "GET")
	assert.Equal(t, []int{200, 404}, get.DocumentedStatuses())
	assert.True(t, get.Documents(404))
	assert.False(t, get.Documents(500))
}

func TestSpec_RequiresAuth(t *testing.T) {
	spec := loadFixture(t)

	get, _ := spec.EndpointByKey("/agents/{id}", "GET")
	del, _ := spec.EndpointByKey("/agents/{id}", "DELETE")
	assert.True(t, spec.RequiresAuth(get), "inherits the document-level requirement")
	assert.False(t, spec.RequiresAuth(del), "an empty security list makes the operation public")

	scheme, ok := spec.SecuritySchemes().Get("bearerAuth")
	require.True(t, ok)
	assert.Equal(t, "http", scheme.Type())
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse("api.txt")
	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".txt", unsupported.Extension)
}

func TestParseBytes_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		problems []string
	}{
		{
			name:     "swagger 2",
			doc:      "swagger: '2.0'\ninfo: {title: x, version: '1'}\npaths: {/a: {get: {}}}",
			problems: []string{"missing required field: openapi"},
		},
		{
			name:     "wrong major version",
			doc:      "openapi: 2.0\ninfo: {title: x, version: '1'}\npaths: {/a: {get: {}}}",
			problems: []string{"only OpenAPI 3.x is supported, got 2.0"},
		},
		{
			name: "every problem reported",
			doc:  "openapi: 3.0.0\ninfo: {title: ''}\npaths: {}",
			problems: []string{
				"'info.title' is required",
				"'info.version' is required",
				"'paths' must contain at least one endpoint",
			},
		},
		{
			name:     "path without methods",
			doc:      "openapi: 3.1.0\ninfo: {title: x, version: '1'}\npaths:\n  /empty:\n    summary: nothing here",
			problems: []string{"path /empty declares none of the methods GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS"},
		},
		{
			name:     "not a mapping",
			doc:      "- just\n- a list",
			problems: []string{"top level must be a mapping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc), ".yaml")
			var malformed *MalformedSpecError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.problems, malformed.Problems)
		})
	}
}

func TestParseBytes_DuplicateOperationReplacedInPlace(t *testing.T) {
	doc := `
openapi: 3.0.0
info: {title: dup, version: '1'}
paths:
  /a:
    get:
      summary: first
      responses: {'200': {description: ok}}
  /b:
    get:
      responses: {'200': {description: ok}}
  /a:
    get:
      summary: second
      responses: {'200': {description: ok}}
`
	spec, err := ParseBytes([]byte(doc), ".yaml")
	require.NoError(t, err)

	eps := spec.Endpoints()
	require.Len(t, eps, 2)
	assert.Equal(t, "/a", eps[0].Path)
	assert.Equal(t, "second", eps[0].Summary)
	assert.Equal(t, "/b", eps[1].Path)
}

func TestParseBytes_JSON(t *testing.T) {
	doc := `{
  "openapi": "3.0.1",
  "info": {"title": "json api", "version": "2"},
  "paths": {
    "/items": {
      "put": {"responses": {"200": {"description": "ok"}}},
      "get": {"summary": "List items", "responses": {"200": {"description": "ok"}}}
    }
  }
}`
	spec, err := ParseBytes([]byte(doc), ".JSON")
	require.NoError(t, err)

	eps := spec.Endpoints()
	require.Len(t, eps, 2)
	assert.Equal(t, "GET", eps[0].Method)
	assert.Equal(t, "PUT", eps[1].Method)
	assert.Equal(t, "List items", eps[0].Name())
}

func TestSpec_ResolveCycle(t *testing.T) {
	doc := `
openapi: 3.0.0
info: {title: cyc, version: '1'}
paths: {/a: {get: {responses: {'200': {description: ok}}}}}
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
`
	spec, err := ParseBytes([]byte(doc), ".yml")
	require.NoError(t, err)

	a, ok := spec.Schema("A")
	require.True(t, ok)
	resolved := spec.Resolve(a)
	assert.NotEmpty(t, resolved.Ref(), "cycles terminate on a reference")
}

func TestEndpoint_Resource(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/agents", "agents"},
		{"/api/v1/policies/{id}", "policies"},
		{"/", "root"},
		{"/{tenant}/payments", "payments"},
	}
	for _, tt := range tests {
		if got := (Endpoint{Path: tt.path}).Resource(); got != tt.want {
			t.Errorf("Resource(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

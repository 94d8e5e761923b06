package mockserver

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"specprobe/internal/mockdata"
	"specprobe/internal/openapi"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// resource is a stored JSON object.
type resource map[string]any

func (s *Server) handler(ep openapi.Endpoint, r route) gin.HandlerFunc {
	status := mockdata.SuccessStatus(ep)
	secured := s.spec.RequiresAuth(ep)

	return func(c *gin.Context) {
		c.Set(routeKey, ep.Path)
		if secured && !s.authorize(c) {
			return
		}

		concrete := ep.Path
		for wildcard, name := range r.params {
			concrete = strings.ReplaceAll(concrete, "{"+name+"}", c.Param(wildcard))
		}
		id := ""
		if r.last != "" {
			id = c.Param(r.last)
			if strings.HasPrefix(id, "missing") {
				c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
				return
			}
		}

		var body resource
		if ep.RequestBody != nil && hasBody(ep.Method) {
			var ok bool
			if body, ok = s.readBody(c, ep); !ok {
				return
			}
		}

		switch {
		case ep.Method == http.MethodPost && body != nil:
			if _, ok := body["id"]; !ok {
				body["id"] = uuid.NewString()
			}
			key := strings.TrimSuffix(concrete, "/") + "/" + toString(body["id"])
			s.store.SetDefault(key, body)
			c.JSON(status, body)
			return
		case id != "":
			if s.serveStored(c, ep.Method, concrete, body, status) {
				return
			}
		case ep.Method == http.MethodGet:
			if items := s.list(concrete); len(items) > 0 {
				c.JSON(status, items)
				return
			}
		}
		s.respondSample(c, ep, status)
	}
}

// serveStored answers a request for a single stored resource. It returns
// false when the id is unknown so the caller falls back to sample data.
func (s *Server) serveStored(c *gin.Context, method, key string, body resource, status int) bool {
	value, found := s.store.Get(key)
	if !found {
		return false
	}
	stored := value.(resource)
	switch method {
	case http.MethodGet:
		c.JSON(status, stored)
	case http.MethodPut:
		if body == nil {
			body = resource{}
		}
		body["id"] = stored["id"]
		s.store.SetDefault(key, body)
		c.JSON(status, body)
	case http.MethodPatch:
		merged := resource{}
		for k, v := range stored {
			merged[k] = v
		}
		for k, v := range body {
			merged[k] = v
		}
		merged["id"] = stored["id"]
		s.store.SetDefault(key, merged)
		c.JSON(status, merged)
	case http.MethodDelete:
		s.store.Delete(key)
		if status == http.StatusNoContent {
			c.Status(status)
		} else {
			c.JSON(status, gin.H{"deleted": true})
		}
	default:
		return false
	}
	return true
}

// list returns the stored resources directly under a collection path in
// key order.
func (s *Server) list(path string) []resource {
	prefix := strings.TrimSuffix(path, "/") + "/"
	var keys []string
	items := s.store.Items()
	for key := range items {
		if strings.HasPrefix(key, prefix) && collection(key) == strings.TrimSuffix(prefix, "/") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := make([]resource, 0, len(keys))
	for _, key := range keys {
		out = append(out, items[key].Object.(resource))
	}
	return out
}

func (s *Server) respondSample(c *gin.Context, ep openapi.Endpoint, status int) {
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	sample := s.samples.ResponseSample(ep, status)
	if sample == nil {
		sample = gin.H{}
	}
	c.JSON(status, sample)
}

// readBody decodes a JSON object body and checks the schema's required
// properties. It writes a 400 and returns false on failure. An empty body
// yields nil.
func (s *Server) readBody(c *gin.Context, ep openapi.Endpoint) (resource, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
		return nil, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, true
	}
	var body resource
	if err := json.Unmarshal(data, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return nil, false
	}

	schema := s.spec.Resolve(*ep.RequestBody)
	for _, name := range schema.Required() {
		if _, ok := body[name]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: " + name})
			return nil, false
		}
	}
	if len(schema.Properties()) > 0 {
		known := map[string]bool{}
		for _, p := range schema.Properties() {
			known[p.Name] = true
		}
		for name := range body {
			if !known[name] && name != "id" && isClosed(schema) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown field: " + name})
				return nil, false
			}
		}
	}
	return body, true
}

// isClosed reports whether the schema forbids undeclared properties.
func isClosed(schema openapi.Schema) bool {
	v, ok := schema.Get("additionalProperties")
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return isBool && !b
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		data, _ := json.Marshal(t)
		return strings.Trim(string(data), `"`)
	}
}

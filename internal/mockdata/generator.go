package mockdata

import (
	"strings"

	"specprobe/internal/openapi"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultMaxDepth bounds recursion into nested and self-referencing schemas.
const DefaultMaxDepth = 6

// sampleNamespace seeds the name-based UUIDs so that the same property path
// always yields the same identifier.
var sampleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://specprobe.dev/mockdata"))

// Generator builds deterministic example values from OpenAPI schemas.
type Generator struct {
	spec     *openapi.Spec
	maxDepth int
}

// NewGenerator returns a generator that resolves references against spec.
// spec may be nil when only inline schemas are sampled.
func NewGenerator(spec *openapi.Spec) *Generator {
	return &Generator{spec: spec, maxDepth: DefaultMaxDepth}
}

// Sample returns an example value for schema. Objects are returned as
// ordered maps so that JSON output keeps the declared property order.
func (g *Generator) Sample(schema openapi.Schema) any {
	return g.sample(schema, "", 0)
}

func (g *Generator) resolve(schema openapi.Schema) openapi.Schema {
	if g.spec == nil {
		return schema
	}
	return g.spec.Resolve(schema)
}

func (g *Generator) sample(schema openapi.Schema, name string, depth int) any {
	schema = g.resolve(schema)
	if schema.IsZero() || schema.Ref() != "" {
		return nil
	}

	if v, ok := schema.Example(); ok {
		return v
	}
	if enum := schema.Enum(); len(enum) > 0 {
		return enum[0]
	}

	if parts := schema.Composition("allOf"); len(parts) > 0 {
		return g.merge(parts, name, depth)
	}
	for _, keyword := range []string{"oneOf", "anyOf"} {
		if parts := schema.Composition(keyword); len(parts) > 0 {
			return g.sample(parts[0], name, depth)
		}
	}

	switch schema.Type() {
	case "object":
		if depth >= g.maxDepth {
			return orderedmap.New[string, any]()
		}
		obj := orderedmap.New[string, any]()
		for _, prop := range schema.Properties() {
			obj.Set(prop.Name, g.sample(prop.Schema, joinPath(name, prop.Name), depth+1))
		}
		return obj
	case "array":
		if depth >= g.maxDepth {
			return []any{}
		}
		items, ok := schema.Items()
		if !ok {
			return []any{}
		}
		return []any{g.sample(items, name+"[]", depth+1)}
	case "integer":
		if min, ok := schema.Number("minimum"); ok {
			return int(min)
		}
		return 1
	case "number":
		if min, ok := schema.Number("minimum"); ok {
			return min
		}
		return 1.5
	case "boolean":
		return true
	case "string":
		return sampleString(schema, name)
	}
	return nil
}

// merge folds allOf parts into one object, later parts winning.
func (g *Generator) merge(parts []openapi.Schema, name string, depth int) any {
	merged := orderedmap.New[string, any]()
	var last any
	for _, part := range parts {
		v := g.sample(part, name, depth)
		obj, ok := v.(*orderedmap.OrderedMap[string, any])
		if !ok {
			last = v
			continue
		}
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	if merged.Len() == 0 && last != nil {
		return last
	}
	return merged
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func sampleString(schema openapi.Schema, name string) string {
	switch schema.Format() {
	case "email":
		return "jane.doe@example.com"
	case "date":
		return "2024-01-15"
	case "date-time":
		return "2024-01-15T10:30:00Z"
	case "uuid":
		return uuid.NewSHA1(sampleNamespace, []byte(name)).String()
	case "uri", "url":
		return "https://example.com/resource"
	case "hostname":
		return "api.example.com"
	case "ipv4":
		return "192.0.2.10"
	case "password":
		return "P@ssw0rd-123"
	case "byte":
		return "c2FtcGxl"
	}

	value := hintFor(name)
	if max, ok := schema.Number("maxLength"); ok && int(max) > 0 && len(value) > int(max) {
		value = value[:int(max)]
	}
	if min, ok := schema.Number("minLength"); ok && len(value) < int(min) {
		value += strings.Repeat("x", int(min)-len(value))
	}
	return value
}

// hintFor picks a plausible string from the last segment of a property path.
func hintFor(path string) string {
	name := path
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(strings.TrimSuffix(name, "[]"))

	switch {
	case name == "":
		return "sample"
	case strings.Contains(name, "email"):
		return "jane.doe@example.com"
	case strings.Contains(name, "phone"):
		return "555-0100-0100"
	case strings.Contains(name, "city"):
		return "Chicago"
	case name == "state":
		return "IL"
	case strings.Contains(name, "country"):
		return "USA"
	case strings.Contains(name, "postal") || strings.Contains(name, "zip"):
		return "60601"
	case strings.Contains(name, "address"):
		return "100 Main Street"
	case strings.Contains(name, "date"):
		return "2024-01-15"
	case strings.Contains(name, "name"):
		return "Jane Doe"
	case strings.Contains(name, "status"):
		return "ACTIVE"
	}
	return "sample " + name
}

package openapi

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a decoded YAML/JSON mapping that keeps document key order.
type Object = orderedmap.OrderedMap[string, any]

// Schema is an opaque JSON Schema fragment. Nested mappings are *Object,
// sequences are []any and scalars are string, int, float64, bool or nil.
type Schema struct {
	fields *Object
}

// Property is a named object property in declaration order.
type Property struct {
	Name   string
	Schema Schema
}

// NewSchema wraps a decoded mapping. A nil mapping yields the zero Schema.
func NewSchema(fields *Object) Schema {
	return Schema{fields: fields}
}

// IsZero reports whether the schema has no content at all.
func (s Schema) IsZero() bool {
	return s.fields == nil || s.fields.Len() == 0
}

// Fields exposes the underlying mapping; it must not be modified.
func (s Schema) Fields() *Object {
	return s.fields
}

// Get returns the raw value stored under key.
func (s Schema) Get(key string) (any, bool) {
	if s.fields == nil {
		return nil, false
	}
	return s.fields.Get(key)
}

func (s Schema) str(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// Type returns the declared type. OpenAPI 3.1 type arrays resolve to their
// first non-null entry.
func (s Schema) Type() string {
	v, ok := s.Get("type")
	if !ok {
		if _, hasProps := s.Get("properties"); hasProps {
			return "object"
		}
		if _, hasItems := s.Get("items"); hasItems {
			return "array"
		}
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, entry := range t {
			if name, ok := entry.(string); ok && name != "null" {
				return name
			}
		}
	}
	return ""
}

// Format returns the format keyword, e.g. "date-time" or "uuid".
func (s Schema) Format() string { return s.str("format") }

// Ref returns the $ref target, if any.
func (s Schema) Ref() string { return s.str("$ref") }

// Description returns the description keyword.
func (s Schema) Description() string { return s.str("description") }

// Example returns the schema's example, falling back to its default.
func (s Schema) Example() (any, bool) {
	if v, ok := s.Get("example"); ok {
		return v, true
	}
	if v, ok := s.Get("examples"); ok {
		if list, isList := v.([]any); isList && len(list) > 0 {
			return list[0], true
		}
	}
	if v, ok := s.Get("default"); ok {
		return v, true
	}
	return nil, false
}

// Enum returns the allowed values, if the schema declares any.
func (s Schema) Enum() []any {
	v, ok := s.Get("enum")
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// Number returns a numeric keyword such as "minimum" or "maxLength".
func (s Schema) Number(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Properties returns object properties in document order.
func (s Schema) Properties() []Property {
	v, ok := s.Get("properties")
	if !ok {
		return nil
	}
	props, ok := v.(*Object)
	if !ok {
		return nil
	}
	out := make([]Property, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child, _ := pair.Value.(*Object)
		out = append(out, Property{Name: pair.Key, Schema: NewSchema(child)})
	}
	return out
}

// Required returns the names listed under "required".
func (s Schema) Required() []string {
	v, ok := s.Get("required")
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if name, ok := entry.(string); ok {
			out = append(out, name)
		}
	}
	return out
}

// Items returns the element schema of an array.
func (s Schema) Items() (Schema, bool) {
	v, ok := s.Get("items")
	if !ok {
		return Schema{}, false
	}
	items, ok := v.(*Object)
	if !ok {
		return Schema{}, false
	}
	return NewSchema(items), true
}

// Composition returns the subschemas listed under allOf, oneOf or anyOf.
func (s Schema) Composition(keyword string) []Schema {
	v, ok := s.Get(keyword)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	out := make([]Schema, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(*Object); ok {
			out = append(out, NewSchema(obj))
		}
	}
	return out
}

// refName returns the component name for local refs of the given kind,
// e.g. refName("#/components/schemas/Agent", "schemas") == "Agent".
func refName(ref, kind string) (string, bool) {
	prefix := "#/components/" + kind + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	name = strings.ReplaceAll(name, "~1", "/")
	name = strings.ReplaceAll(name, "~0", "~")
	return name, name != ""
}

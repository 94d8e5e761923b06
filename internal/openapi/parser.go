package openapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"specprobe/pkg/logging"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Spec is the parsed, immutable model of an OpenAPI 3.x document.
type Spec struct {
	source          string
	version         string
	info            Info
	servers         []Server
	endpoints       []Endpoint
	index           map[string]int
	components      *Object
	schemas         *orderedmap.OrderedMap[string, Schema]
	securitySchemes *orderedmap.OrderedMap[string, Schema]
	globalSecurity  []SecurityRequirement
}

// Parse loads an OpenAPI document from a .yaml, .yml or .json file.
func Parse(path string) (*Spec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !isSupportedExt(ext) {
		return nil, &UnsupportedFormatError{Path: path, Extension: ext}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification %s: %w", path, err)
	}

	logging.Info("SpecParser", "Loading OpenAPI specification from %s", path)
	spec, err := parse(data, path)
	if err != nil {
		return nil, err
	}
	logging.Info("SpecParser", "Loaded %d endpoints from specification", len(spec.endpoints))
	return spec, nil
}

// ParseBytes parses an in-memory document. ext selects the format the same
// way a file extension would (".yaml", ".yml" or ".json").
func ParseBytes(data []byte, ext string) (*Spec, error) {
	ext = strings.ToLower(ext)
	if !isSupportedExt(ext) {
		return nil, &UnsupportedFormatError{Path: "<memory>", Extension: ext}
	}
	return parse(data, "")
}

func isSupportedExt(ext string) bool {
	switch ext {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// parse decodes through yaml.Node so that paths, responses and schema
// properties keep their document order. JSON input is valid YAML.
func parse(data []byte, source string) (*Spec, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &MalformedSpecError{Path: source, Problems: []string{fmt.Sprintf("cannot decode document: %v", err)}}
	}

	doc, ok := toValue(&root).(*Object)
	if !ok {
		return nil, &MalformedSpecError{Path: source, Problems: []string{"top level must be a mapping"}}
	}

	problems := &MalformedSpecError{Path: source}
	spec := &Spec{
		source:          source,
		index:           map[string]int{},
		schemas:         orderedmap.New[string, Schema](),
		securitySchemes: orderedmap.New[string, Schema](),
	}

	spec.version = scalarString(doc, "openapi")
	switch {
	case spec.version == "":
		problems.add("missing required field: openapi")
	case !strings.HasPrefix(spec.version, "3."):
		problems.add("only OpenAPI 3.x is supported, got %s", spec.version)
	}

	if rawInfo, present := doc.Get("info"); !present {
		problems.add("missing required field: info")
	} else if info, isMap := rawInfo.(*Object); !isMap {
		problems.add("'info' must be an object")
	} else {
		spec.info = Info{
			Title:       scalarString(info, "title"),
			Version:     scalarString(info, "version"),
			Description: scalarString(info, "description"),
		}
		if spec.info.Title == "" {
			problems.add("'info.title' is required")
		}
		if spec.info.Version == "" {
			problems.add("'info.version' is required")
		}
	}

	var paths *Object
	if rawPaths, present := doc.Get("paths"); !present {
		problems.add("missing required field: paths")
	} else if p, isMap := rawPaths.(*Object); !isMap {
		problems.add("'paths' must be an object")
	} else if p.Len() == 0 {
		problems.add("'paths' must contain at least one endpoint")
	} else {
		paths = p
	}

	spec.components, _ = mapping(doc, "components")
	spec.extractComponents()
	spec.globalSecurity = securityList(doc, "security")

	if servers, ok := sequence(doc, "servers"); ok {
		for _, raw := range servers {
			if server, isMap := raw.(*Object); isMap {
				spec.servers = append(spec.servers, Server{
					URL:         scalarString(server, "url"),
					Description: scalarString(server, "description"),
				})
			}
		}
	}

	if paths != nil {
		spec.extractEndpoints(paths, problems)
	}

	if len(problems.Problems) > 0 {
		logging.Error("SpecParser", problems, "OpenAPI specification validation failed")
		return nil, problems
	}
	logging.Debug("SpecParser", "OpenAPI specification validation passed")
	return spec, nil
}

func (s *Spec) extractComponents() {
	if s.components == nil {
		return
	}
	if schemas, ok := mapping(s.components, "schemas"); ok {
		for pair := schemas.Oldest(); pair != nil; pair = pair.Next() {
			obj, _ := pair.Value.(*Object)
			s.schemas.Set(pair.Key, NewSchema(obj))
		}
	}
	if schemes, ok := mapping(s.components, "securitySchemes"); ok {
		for pair := schemes.Oldest(); pair != nil; pair = pair.Next() {
			obj, _ := pair.Value.(*Object)
			s.securitySchemes.Set(pair.Key, NewSchema(obj))
		}
	}
}

func (s *Spec) extractEndpoints(paths *Object, problems *MalformedSpecError) {
	for pair := paths.Oldest(); pair != nil; pair = pair.Next() {
		path := pair.Key
		if strings.HasPrefix(path, "x-") {
			continue
		}
		item, ok := pair.Value.(*Object)
		if !ok {
			problems.add("path %s must be an object", path)
			continue
		}

		sharedParams := s.parameters(item)
		declared := 0
		for _, method := range Methods {
			raw, present := item.Get(strings.ToLower(method))
			if !present {
				continue
			}
			declared++
			op, _ := raw.(*Object)
			if op == nil {
				op = orderedmap.New[string, any]()
			}
			s.add(s.buildEndpoint(path, method, op, sharedParams))
		}
		if declared == 0 {
			problems.add("path %s declares none of the methods %s", path, strings.Join(Methods, ", "))
		}
	}
}

// add appends an endpoint; a repeated (path, method) replaces the earlier
// entry in place.
func (s *Spec) add(ep Endpoint) {
	key := ep.Key()
	if i, exists := s.index[key]; exists {
		logging.Warn("SpecParser", "Duplicate operation %s, later definition wins", key)
		s.endpoints[i] = ep
		return
	}
	s.index[key] = len(s.endpoints)
	s.endpoints = append(s.endpoints, ep)
}

func (s *Spec) buildEndpoint(path, method string, op *Object, shared []Parameter) Endpoint {
	ep := Endpoint{
		Path:        path,
		Method:      method,
		OperationID: scalarString(op, "operationId"),
		Summary:     scalarString(op, "summary"),
		Description: scalarString(op, "description"),
		Tags:        stringList(op, "tags"),
		Parameters:  mergeParameters(shared, s.parameters(op)),
		Responses:   orderedmap.New[string, Response](),
	}
	if ep.OperationID == "" {
		ep.OperationID = strings.ToLower(method) + "_" + path
	}
	if deprecated, ok := op.Get("deprecated"); ok {
		ep.Deprecated, _ = deprecated.(bool)
	}

	if body, ok := s.resolveObject(op, "requestBody", "requestBodies"); ok {
		if ct, schema, found := s.mediaSchema(body); found {
			ep.RequestBody = &schema
			ep.RequestContentType = ct
		}
	}

	if responses, ok := mapping(op, "responses"); ok {
		for pair := responses.Oldest(); pair != nil; pair = pair.Next() {
			raw, _ := pair.Value.(*Object)
			resp := Response{}
			if raw != nil {
				resolved := s.resolveRefObject(raw, "responses")
				resp.Description = scalarString(resolved, "description")
				if ct, schema, found := s.mediaSchema(resolved); found {
					resp.ContentType = ct
					resp.Schema = schema
				}
			}
			ep.Responses.Set(pair.Key, resp)
		}
	}

	if _, declared := op.Get("security"); declared {
		ep.securityDeclared = true
		ep.Security = securityList(op, "security")
	}
	return ep
}

func (s *Spec) parameters(holder *Object) []Parameter {
	raw, ok := sequence(holder, "parameters")
	if !ok {
		return nil
	}
	var params []Parameter
	for _, entry := range raw {
		obj, isMap := entry.(*Object)
		if !isMap {
			continue
		}
		obj = s.resolveRefObject(obj, "parameters")
		param := Parameter{
			Name:        scalarString(obj, "name"),
			In:          scalarString(obj, "in"),
			Description: scalarString(obj, "description"),
		}
		if required, ok := obj.Get("required"); ok {
			param.Required, _ = required.(bool)
		}
		if schema, ok := mapping(obj, "schema"); ok {
			param.Schema = NewSchema(schema)
		}
		params = append(params, param)
	}
	return params
}

// mergeParameters puts path-level parameters first; an operation parameter
// with the same name and location replaces the shared one.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	merged := make([]Parameter, 0, len(shared)+len(own))
	for _, p := range shared {
		overridden := false
		for _, o := range own {
			if o.Name == p.Name && o.In == p.In {
				overridden = true
				break
			}
		}
		if !overridden {
			merged = append(merged, p)
		}
	}
	return append(merged, own...)
}

// mediaSchema picks the schema of the first JSON-like media type, falling
// back to the first media type declared.
func (s *Spec) mediaSchema(holder *Object) (string, Schema, bool) {
	content, ok := mapping(holder, "content")
	if !ok || content.Len() == 0 {
		return "", Schema{}, false
	}
	chosen := content.Oldest()
	for pair := content.Oldest(); pair != nil; pair = pair.Next() {
		if strings.Contains(pair.Key, "json") {
			chosen = pair
			break
		}
	}
	media, _ := chosen.Value.(*Object)
	schema, _ := mapping(media, "schema")
	return chosen.Key, NewSchema(schema), true
}

func (s *Spec) resolveObject(holder *Object, key, kind string) (*Object, bool) {
	obj, ok := mapping(holder, key)
	if !ok {
		return nil, false
	}
	return s.resolveRefObject(obj, kind), true
}

// resolveRefObject follows a local "#/components/<kind>/<name>" reference.
// Unresolvable references return the original object.
func (s *Spec) resolveRefObject(obj *Object, kind string) *Object {
	for hops := 0; hops < 16; hops++ {
		ref := scalarString(obj, "$ref")
		if ref == "" {
			return obj
		}
		name, ok := refName(ref, kind)
		if !ok || s.components == nil {
			return obj
		}
		section, ok := mapping(s.components, kind)
		if !ok {
			return obj
		}
		target, ok := mapping(section, name)
		if !ok {
			logging.Warn("SpecParser", "Unresolved reference %s", ref)
			return obj
		}
		obj = target
	}
	return obj
}

// Source returns the file the spec was parsed from.
func (s *Spec) Source() string { return s.source }

// Version returns the openapi version string.
func (s *Spec) Version() string { return s.version }

// Info returns the document's info object.
func (s *Spec) Info() Info { return s.info }

// Servers returns the declared servers.
func (s *Spec) Servers() []Server { return s.servers }

// Endpoints returns every operation: paths in document order, methods per
// path in the order of Methods.
func (s *Spec) Endpoints() []Endpoint {
	out := make([]Endpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out
}

// EndpointByKey looks up an operation by path and (case-insensitive) method.
func (s *Spec) EndpointByKey(path, method string) (Endpoint, bool) {
	i, ok := s.index[endpointKey(path, method)]
	if !ok {
		return Endpoint{}, false
	}
	return s.endpoints[i], true
}

// Schemas returns components.schemas in document order.
func (s *Spec) Schemas() *orderedmap.OrderedMap[string, Schema] {
	return s.schemas
}

// Schema returns a named component schema.
func (s *Spec) Schema(name string) (Schema, bool) {
	return s.schemas.Get(name)
}

// SecuritySchemes returns components.securitySchemes in document order.
func (s *Spec) SecuritySchemes() *orderedmap.OrderedMap[string, Schema] {
	return s.securitySchemes
}

// RequiresAuth reports whether the operation is protected, either by its
// own security list or by the document-level one.
func (s *Spec) RequiresAuth(ep Endpoint) bool {
	if ep.securityDeclared {
		return len(ep.Security) > 0
	}
	return len(s.globalSecurity) > 0
}

// Resolve follows component schema references. Cycles stop after a fixed
// number of hops and return the last schema reached.
func (s *Spec) Resolve(schema Schema) Schema {
	for hops := 0; hops < 16; hops++ {
		ref := schema.Ref()
		if ref == "" {
			return schema
		}
		name, ok := refName(ref, "schemas")
		if !ok {
			return schema
		}
		target, ok := s.schemas.Get(name)
		if !ok {
			return schema
		}
		schema = target
	}
	return schema
}

// toValue converts a YAML node tree into *Object, []any and scalars.
func toValue(n *yaml.Node) any {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return toValue(n.Content[0])
	case yaml.AliasNode:
		return toValue(n.Alias)
	case yaml.MappingNode:
		obj := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Tag == "!!merge" {
				if merged, ok := toValue(n.Content[i+1]).(*Object); ok {
					for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
						if _, exists := obj.Get(pair.Key); !exists {
							obj.Set(pair.Key, pair.Value)
						}
					}
				}
				continue
			}
			obj.Set(key.Value, toValue(n.Content[i+1]))
		}
		return obj
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			list = append(list, toValue(child))
		}
		return list
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return n.Value
		}
		return v
	}
	return nil
}

func mapping(obj *Object, key string) (*Object, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Object)
	return m, ok
}

func sequence(obj *Object, key string) ([]any, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

// scalarString renders a scalar as text; "openapi: 3.0" decodes as a float
// and must still read back as "3.0".
func scalarString(obj *Object, key string) string {
	if obj == nil {
		return ""
	}
	v, ok := obj.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		text := fmt.Sprintf("%g", t)
		if !strings.Contains(text, ".") && !strings.ContainsAny(text, "eE") {
			text += ".0"
		}
		return text
	case *Object, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func stringList(obj *Object, key string) []string {
	raw, ok := sequence(obj, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func securityList(obj *Object, key string) []SecurityRequirement {
	raw, ok := sequence(obj, key)
	if !ok {
		return nil
	}
	out := make([]SecurityRequirement, 0, len(raw))
	for _, entry := range raw {
		req, isMap := entry.(*Object)
		if !isMap {
			continue
		}
		requirement := SecurityRequirement{}
		for pair := req.Oldest(); pair != nil; pair = pair.Next() {
			var scopes []string
			if list, ok := pair.Value.([]any); ok {
				for _, scope := range list {
					if s, ok := scope.(string); ok {
						scopes = append(scopes, s)
					}
				}
			}
			requirement[pair.Key] = scopes
		}
		out = append(out, requirement)
	}
	return out
}

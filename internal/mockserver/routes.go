package mockserver

import (
	"fmt"
	"strings"
)

// route is an OpenAPI path translated for gin. Wildcards are named by
// segment position (":p1", ":p2", ...) because gin refuses two different
// wildcard names at the same position, which OpenAPI documents commonly
// have ("/agents/{id}" next to "/agents/{agentId}/policies").
type route struct {
	ginPath string
	// params maps the gin wildcard name to the OpenAPI parameter name
	params map[string]string
	// last is the wildcard of the final segment, if the path ends in one
	last string
}

func translatePath(path string) route {
	r := route{params: map[string]string{}}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		open, end := strings.IndexByte(segment, '{'), strings.IndexByte(segment, '}')
		if open < 0 || end < open {
			continue
		}
		name := segment[open+1 : end]
		wildcard := fmt.Sprintf("p%d", i)
		r.params[wildcard] = name
		segments[i] = ":" + wildcard
		if i == len(segments)-1 {
			r.last = wildcard
		}
	}
	r.ginPath = strings.Join(segments, "/")
	if r.ginPath == "" {
		r.ginPath = "/"
	}
	return r
}

// collection returns the concrete path of the collection a resource path
// belongs to: "/agents/42" -> "/agents".
func collection(concrete string) string {
	if i := strings.LastIndexByte(concrete, '/'); i > 0 {
		return concrete[:i]
	}
	return "/"
}

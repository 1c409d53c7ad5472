package http

import "strings"

// Params holds the values captured by dynamic path segments, keyed by
// segment name without the braces.
type Params map[string]string

// Get returns the captured value for name. A dynamic segment the request
// path never reached is absent.
func (p Params) Get(name string) (string, bool) {
	value, found := p[name]
	return value, found
}

// routeSegment is one segment of a registered route path. A dynamic
// segment, written {name}, matches any value in its position.
type routeSegment struct {
	name    string
	dynamic bool
}

type Route struct {
	Method Method
	Path   string

	segments []routeSegment
	handler  Handler
}

func newRoute(method Method, path string, handler Handler) Route {
	parts := splitPathSegments(path)
	segments := make([]routeSegment, len(parts))
	for i, part := range parts {
		if len(part) > 2 && strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			segments[i] = routeSegment{name: part[1 : len(part)-1], dynamic: true}
		} else {
			segments[i] = routeSegment{name: part}
		}
	}

	return Route{
		Method:   method,
		Path:     path,
		segments: segments,
		handler:  handler,
	}
}

// structure is the registration identity of the route: its path with every
// dynamic name collapsed, so /users/{id} and /users/{name} collide.
func (r Route) structure() string {
	var b strings.Builder
	for _, segment := range r.segments {
		b.WriteByte('/')
		if segment.dynamic {
			b.WriteString("{}")
		} else {
			b.WriteString(segment.name)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// matches reports whether the route survives elimination against the
// request path. A literal segment must be present and equal. A dynamic
// segment matches any value and may be absent. A request with more
// segments than the route eliminates it.
func (r Route) matches(requestSegments []string) bool {
	for i := 0; i < len(requestSegments) || i < len(r.segments); i++ {
		if i >= len(r.segments) {
			return false
		}
		segment := r.segments[i]
		if i >= len(requestSegments) {
			if !segment.dynamic {
				return false
			}
			continue
		}
		if !segment.dynamic && segment.name != requestSegments[i] {
			return false
		}
	}
	return true
}

// params captures the values of the dynamic segments the request path
// reaches.
func (r Route) params(requestSegments []string) Params {
	params := make(Params)
	for i, segment := range r.segments {
		if segment.dynamic && i < len(requestSegments) {
			params[segment.name] = requestSegments[i]
		}
	}
	return params
}

// splitPathSegments splits path into its non-empty segments, collapsing
// duplicate slashes. The root path yields no segments.
func splitPathSegments(path string) []string {
	segments := make([]string, 0, strings.Count(path, "/"))
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

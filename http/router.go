package http

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/basaltio/basalt/fileserver"
)

var (
	ErrNoRoute        = errors.New("http: no route for request")
	ErrDuplicateRoute = errors.New("http: route already registered")
	ErrAmbiguousRoute = errors.New("http: request matches multiple routes")
)

// Router dispatches requests to registered handlers. Serving reads an
// immutable snapshot of the route table, so lookups never contend with
// registration.
type Router struct {
	mu    sync.Mutex
	table atomic.Pointer[routeTable]
}

type routeTable struct {
	routes     []Route
	structures map[string]struct{}
	catchAll   map[Method]Handler
	fileServer *fileserver.FileServer
	middleware []Middleware
}

func NewRouter() *Router {
	router := &Router{}
	router.table.Store(&routeTable{
		structures: make(map[string]struct{}),
		catchAll:   make(map[Method]Handler),
	})
	return router
}

func (t *routeTable) clone() *routeTable {
	next := &routeTable{
		routes:     make([]Route, len(t.routes)),
		structures: make(map[string]struct{}, len(t.structures)),
		catchAll:   make(map[Method]Handler, len(t.catchAll)),
		fileServer: t.fileServer,
		middleware: make([]Middleware, len(t.middleware)),
	}
	copy(next.routes, t.routes)
	copy(next.middleware, t.middleware)
	for structure := range t.structures {
		next.structures[structure] = struct{}{}
	}
	for method, handler := range t.catchAll {
		next.catchAll[method] = handler
	}
	return next
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodGet}, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodHead}, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodPost}, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodPut}, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodPatch}, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodDelete}, path, handler, middleware...)
}

func (router *Router) CONNECT(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodConnect}, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodOptions}, path, handler, middleware...)
}

func (router *Router) TRACE(path string, handler Handler, middleware ...Middleware) error {
	return router.Any([]Method{MethodTrace}, path, handler, middleware...)
}

// Any registers handler for path under every listed method. Registration
// fails when a route with the same method and segment structure already
// exists; two paths whose only difference is dynamic segment names count
// as the same structure.
func (router *Router) Any(methods []Method, path string, handler Handler, middleware ...Middleware) error {
	router.mu.Lock()
	defer router.mu.Unlock()

	table := router.table.Load().clone()
	handler = wrap(handler, middleware, table.middleware)

	for _, method := range methods {
		route := newRoute(method, path, handler)
		key := string(method) + " " + route.structure()
		if _, exists := table.structures[key]; exists {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, method, path)
		}
		table.structures[key] = struct{}{}
		table.routes = append(table.routes, route)
	}

	router.table.Store(table)
	return nil
}

// CatchAll installs handler as the fallback for method requests that no
// route or file mount serves. Installing another fallback for the same
// method replaces the previous one.
func (router *Router) CatchAll(method Method, handler Handler, middleware ...Middleware) {
	router.mu.Lock()
	defer router.mu.Unlock()

	table := router.table.Load().clone()
	table.catchAll[method] = wrap(handler, middleware, table.middleware)
	router.table.Store(table)
}

// SetFileServer installs fs to serve requests that no route matches.
func (router *Router) SetFileServer(fs *fileserver.FileServer) {
	router.mu.Lock()
	defer router.mu.Unlock()

	table := router.table.Load().clone()
	table.fileServer = fs
	router.table.Store(table)
}

// Use appends middleware applied to every route registered after this
// call.
func (router *Router) Use(middleware ...Middleware) {
	router.mu.Lock()
	defer router.mu.Unlock()

	table := router.table.Load().clone()
	table.middleware = append(table.middleware, middleware...)
	router.table.Store(table)
}

// wrap layers route middleware innermost and router middleware outermost
// around handler.
func wrap(handler Handler, route []Middleware, router []Middleware) Handler {
	for _, middleware := range route {
		handler = middleware(handler)
	}
	for _, middleware := range router {
		handler = middleware(handler)
	}
	return handler
}

// Serve dispatches req. Routes out-rank the file server, which out-ranks
// the method catch-all. A request that survives elimination against more
// than one route is reported as ambiguous rather than served.
func (router *Router) Serve(req *Request) (*Response, error) {
	table := router.table.Load()
	segments := splitPathSegments(req.URL)

	var matched []Route
	for _, route := range table.routes {
		if route.Method == req.Method && route.matches(segments) {
			matched = append(matched, route)
		}
	}

	if len(matched) > 1 {
		return nil, fmt.Errorf("%w: %s %s survives %d routes", ErrAmbiguousRoute, req.Method, req.URL, len(matched))
	}
	if len(matched) == 1 {
		route := matched[0]
		return route.handler.Serve(req, route.params(segments))
	}

	if table.fileServer != nil {
		if resp, served, err := serveFile(table.fileServer, req); served {
			return resp, err
		}
	}

	if handler, found := table.catchAll[req.Method]; found {
		return handler.Serve(req, nil)
	}

	return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, req.Method, req.URL)
}

// serveFile tries to satisfy req from the file server. A path that does
// not resolve to a mounted file falls through; a read failure on a
// resolved file does not.
func serveFile(fs *fileserver.FileServer, req *Request) (*Response, bool, error) {
	path, err := fs.Resolve(req.URL)
	if err != nil {
		return nil, false, nil
	}

	content, err := fs.ReadFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("http: read mounted file %s: %w", path, err)
	}
	return NewResponse().WithBody(fileserver.ContentType(path), content), true, nil
}

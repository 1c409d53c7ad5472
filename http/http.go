// Package http implements a from-scratch HTTP/1.0-1.1 server stack on raw
// TCP connections: wire-level request reading, cookie and multipart codecs,
// path-parameter routing with static-file fallback, and a fixed-size worker
// pool dispatching one request/response cycle per connection.
package http

const (
	DefaultReadBufferSize  = 4096
	DefaultWriteBufferSize = 4096
)

// Handler produces a response for a routed request. The params map holds
// the values captured from dynamic path segments of the matched route.
type Handler interface {
	Serve(req *Request, params Params) (*Response, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(req *Request, params Params) (*Response, error)

func (f HandlerFunc) Serve(req *Request, params Params) (*Response, error) {
	return f(req, params)
}

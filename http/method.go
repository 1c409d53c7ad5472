package http

import "fmt"

// Method is the closed set of request verbs the server understands.
// Parsing is exact: verbs are matched case-sensitively in their canonical
// uppercase form.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodDelete,
		MethodConnect, MethodOptions, MethodTrace, MethodPatch:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrProtocol, s)
}

func (m Method) String() string {
	return string(m)
}

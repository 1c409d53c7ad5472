package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrMissingStatus = errors.New("http: response has no status")

// Response is an outgoing HTTP message under construction. The zero value
// is usable; NewResponse additionally fills in the usual defaults.
type Response struct {
	Version Version
	// Status is the full status portion of the status line, e.g. "200 OK".
	Status  string
	Headers map[string]string
	Cookies map[string]Cookie
	Body    []byte
}

// NewResponse returns a 200 OK HTTP/1.1 response stamped with the current
// date.
func NewResponse() *Response {
	resp := &Response{
		Version: Version11,
		Status:  StatusLine(StatusOK),
		Headers: make(map[string]string),
		Cookies: make(map[string]Cookie),
	}
	return resp.WithDate(time.Now())
}

// WithStatus sets the status line from a registered status code.
func (r *Response) WithStatus(code uint16) *Response {
	r.Status = StatusLine(code)
	return r
}

// WithStatusText sets the status portion of the status line verbatim.
func (r *Response) WithStatusText(status string) *Response {
	r.Status = status
	return r
}

func (r *Response) WithHeader(name string, value string) *Response {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
	return r
}

// WithDate sets the Date header to t in UTC.
func (r *Response) WithDate(t time.Time) *Response {
	return r.WithHeader("Date", t.UTC().Format(time.RFC1123))
}

// AddCookie registers a Set-Cookie header for c, replacing any cookie
// already registered under the same name.
func (r *Response) AddCookie(c Cookie) *Response {
	if r.Cookies == nil {
		r.Cookies = make(map[string]Cookie)
	}
	r.Cookies[c.Name] = c
	return r
}

// WithBody sets the body and the matching Content-Type and Content-Length
// headers.
func (r *Response) WithBody(contentType string, body []byte) *Response {
	r.Body = body
	return r.
		WithHeader("Content-Type", contentType).
		WithHeader("Content-Length", strconv.Itoa(len(body)))
}

func (r *Response) WithText(body string) *Response {
	return r.WithBody("text/plain", []byte(body))
}

func (r *Response) WithHtml(body string) *Response {
	return r.WithBody("text/html", []byte(body))
}

// WithJson marshals v and installs it as an application/json body.
func (r *Response) WithJson(v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("http: encode json body: %w", err)
	}
	return r.WithBody("application/json", body), nil
}

// Bytes serializes the response to its wire form. Headers and cookies are
// emitted in ascending name order so the output is reproducible. A cookie
// that fails validation fails the whole response.
func (r *Response) Bytes() ([]byte, error) {
	if r.Status == "" {
		return nil, ErrMissingStatus
	}

	var b strings.Builder
	b.WriteString(string(r.Version))
	b.WriteByte(' ')
	b.WriteString(r.Status)
	b.WriteString("\r\n")

	headerNames := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		headerNames = append(headerNames, name)
	}
	sort.Strings(headerNames)
	for _, name := range headerNames {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(r.Headers[name])
		b.WriteString("\r\n")
	}

	cookieNames := make([]string, 0, len(r.Cookies))
	for name := range r.Cookies {
		cookieNames = append(cookieNames, name)
	}
	sort.Strings(cookieNames)
	for _, name := range cookieNames {
		cookie := r.Cookies[name]
		serialized, err := cookie.Serialize()
		if err != nil {
			return nil, err
		}
		b.WriteString("Set-Cookie: ")
		b.WriteString(serialized)
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(r.Body))
	out = append(out, b.String()...)
	out = append(out, r.Body...)
	return out, nil
}

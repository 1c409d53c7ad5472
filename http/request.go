package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

var ErrNoCookie = errors.New("http: named cookie not present")

// Request is the structured form of one raw message. It is built once per
// connection and treated as read-only by handlers.
type Request struct {
	Method       Method
	ResourcePath string
	Version      Version

	// URL is ResourcePath with everything from the first '?' onward
	// stripped.
	URL   string
	Query map[string]string

	// Headers holds every header except Cookie, keyed by name as
	// received, last value winning on duplicates.
	Headers map[string]string

	// Cookies holds the name/value pairs carried by Cookie headers,
	// last value winning on duplicate names.
	Cookies map[string]Cookie

	Body []byte

	PeerAddr  net.Addr
	LocalAddr net.Addr
}

// NewRequest builds a structured request from a raw message. The request
// line must carry method, path and version; the method and version must be
// known. Query pairs must each contain '='. Malformed Cookie segments are
// skipped, any other violation fails the whole request.
func NewRequest(raw *RawMessage) (*Request, error) {
	parts := strings.Split(raw.RequestLine, " ")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrProtocol, raw.RequestLine)
	}

	method, err := ParseMethod(parts[0])
	if err != nil {
		return nil, err
	}
	resourcePath := parts[1]
	if resourcePath == "" {
		return nil, fmt.Errorf("%w: request line %q has an empty path", ErrProtocol, raw.RequestLine)
	}
	version, err := ParseVersion(parts[2])
	if err != nil {
		return nil, err
	}

	url, rawQuery, hasQuery := strings.Cut(resourcePath, "?")
	query := make(map[string]string)
	if hasQuery {
		for _, pair := range strings.Split(rawQuery, "&") {
			key, value, found := strings.Cut(pair, "=")
			if !found {
				return nil, fmt.Errorf("%w: query pair %q has no '='", ErrProtocol, pair)
			}
			query[key] = value
		}
	}

	headers := make(map[string]string)
	cookies := make(map[string]Cookie)
	for _, field := range raw.Headers {
		if field.Name == "Cookie" {
			for _, cookie := range ParseRequestCookies(field.Value) {
				cookies[cookie.Name] = cookie
			}
			continue
		}
		headers[field.Name] = field.Value
	}

	return &Request{
		Method:       method,
		ResourcePath: resourcePath,
		Version:      version,
		URL:          url,
		Query:        query,
		Headers:      headers,
		Cookies:      cookies,
		Body:         raw.Body,
		PeerAddr:     raw.PeerAddr,
		LocalAddr:    raw.LocalAddr,
	}, nil
}

// Header returns the value of the named header.
func (req *Request) Header(name string) (string, bool) {
	value, found := req.Headers[name]
	return value, found
}

// QueryParam returns the value of the named query parameter.
func (req *Request) QueryParam(name string) (string, bool) {
	value, found := req.Query[name]
	return value, found
}

// Cookie returns the named request cookie, or ErrNoCookie.
func (req *Request) Cookie(name string) (Cookie, error) {
	cookie, found := req.Cookies[name]
	if !found {
		return Cookie{}, ErrNoCookie
	}
	return cookie, nil
}

// ParseRequestCookies parses one Cookie header value into its name/value
// pairs. Segments without '=' are skipped.
func ParseRequestCookies(line string) []Cookie {
	var cookies []Cookie
	for _, segment := range strings.Split(line, ";") {
		segment = strings.TrimSpace(segment)
		name, value, found := strings.Cut(segment, "=")
		if !found {
			slog.Debug("http: skipping malformed cookie segment", "segment", segment)
			continue
		}
		cookies = append(cookies, Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return cookies
}

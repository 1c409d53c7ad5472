package http

import "fmt"

// Version is the protocol version carried on the request and status lines.
// HTTP/0.9 request lines (no version token) are rejected as unsupported;
// a request line must carry one of the two versions below.
type Version string

const (
	Version10 Version = "HTTP/1.0"
	Version11 Version = "HTTP/1.1"
)

func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case Version10, Version11:
		return Version(s), nil
	}
	return "", fmt.Errorf("%w: unsupported protocol version %q", ErrProtocol, s)
}

func (v Version) String() string {
	return string(v)
}

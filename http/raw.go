package http

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

var (
	// ErrTransport marks socket-level read/write failures. The connection
	// is closed without a response.
	ErrTransport = errors.New("http: transport failure")

	// ErrProtocol marks messages the server cannot parse. The connection
	// is closed without a response.
	ErrProtocol = errors.New("http: malformed message")
)

// HeaderField is one raw header line, name and value trimmed.
type HeaderField struct {
	Name  string
	Value string
}

// RawMessage is the wire-level request as read off the socket: the request
// line, the header lines in arrival order with duplicates preserved, the
// body framed by Content-Length, and the socket addresses at read time.
// It is built once per connection and not modified afterwards.
type RawMessage struct {
	RequestLine string
	Headers     []HeaderField
	Body        []byte
	PeerAddr    net.Addr
	LocalAddr   net.Addr
}

// Header returns the value of the last header with the given name.
func (msg *RawMessage) Header(name string) (string, bool) {
	var value string
	var found bool
	for _, field := range msg.Headers {
		if field.Name == name {
			value = field.Value
			found = true
		}
	}
	return value, found
}

// ReadRawMessage reads one HTTP message off the connection: the request
// line, header lines until a blank line, and a body of exactly
// Content-Length bytes when that header carries a positive integer.
// Header lines without a ':' are skipped. A connection closed before any
// bytes arrive surfaces as io.EOF.
func ReadRawMessage(conn net.Conn) (*RawMessage, error) {
	reader := bufio.NewReaderSize(conn, DefaultReadBufferSize)

	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading request line: %v", ErrTransport, err)
	}

	msg := &RawMessage{
		RequestLine: strings.TrimSpace(line),
		PeerAddr:    conn.RemoteAddr(),
		LocalAddr:   conn.LocalAddr(),
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: reading header block: %v", ErrTransport, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		msg.Headers = append(msg.Headers, HeaderField{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	if raw, found := msg.Header("Content-Length"); found {
		length, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: content length %q is not an integer", ErrProtocol, raw)
		}
		if length > 0 {
			body := make([]byte, length)
			if _, err := io.ReadFull(reader, body); err != nil {
				return nil, fmt.Errorf("%w: body shorter than declared %d bytes: %v", ErrProtocol, length, err)
			}
			msg.Body = body
		}
	}

	return msg, nil
}

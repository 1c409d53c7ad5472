package http

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNotMultipart     = errors.New("http: request is not multipart/form-data")
	ErrBoundaryMismatch = errors.New("http: multipart boundary mismatch")
	ErrMalformedPart    = errors.New("http: malformed multipart body")
	ErrMultipleParts    = errors.New("http: multipart body has more than one part")
)

// MultipartPart is the single part of a multipart/form-data body. FileName
// is empty when the part carries no filename directive.
type MultipartPart struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// MultipartBoundary extracts the boundary parameter from a Content-Type
// header value such as "multipart/form-data; boundary=xyz".
func MultipartBoundary(contentType string) (string, bool) {
	for _, directive := range strings.Split(contentType, ";") {
		directive = strings.TrimSpace(directive)
		if value, found := strings.CutPrefix(directive, "boundary="); found {
			value = strings.Trim(value, `"`)
			if value != "" {
				return value, true
			}
		}
	}
	return "", false
}

// MultipartBody decodes the request body as a multipart/form-data payload
// with exactly one part.
func (r *Request) MultipartBody() (MultipartPart, error) {
	contentType, found := r.Header("Content-Type")
	if !found {
		return MultipartPart{}, fmt.Errorf("%w: no Content-Type header", ErrNotMultipart)
	}
	boundary, found := MultipartBoundary(contentType)
	if !found {
		return MultipartPart{}, fmt.Errorf("%w: no boundary in %q", ErrNotMultipart, contentType)
	}
	return DecodeMultipart(boundary, r.Body)
}

// DecodeMultipart parses a multipart/form-data body containing exactly one
// part: the opening boundary line, a Content-Disposition line, a
// Content-Type line, a blank line, then data up to the closing boundary.
// A body with additional parts is rejected.
func DecodeMultipart(boundary string, body []byte) (MultipartPart, error) {
	var part MultipartPart

	reader := bufio.NewReader(bytes.NewReader(body))
	delimiter := "--" + boundary

	line, err := readMultipartLine(reader)
	if err != nil {
		return part, err
	}
	if strings.TrimSpace(line) != delimiter {
		return part, fmt.Errorf("%w: expected %q, got %q", ErrBoundaryMismatch, delimiter, strings.TrimSpace(line))
	}

	line, err = readMultipartLine(reader)
	if err != nil {
		return part, err
	}
	name, fileName, err := parseContentDisposition(line)
	if err != nil {
		return part, err
	}
	part.Name = name
	part.FileName = fileName

	line, err = readMultipartLine(reader)
	if err != nil {
		return part, err
	}
	contentType, found := strings.CutPrefix(line, "Content-Type:")
	if !found {
		return part, fmt.Errorf("%w: expected a Content-Type line, got %q", ErrMalformedPart, strings.TrimSpace(line))
	}
	part.ContentType = strings.TrimSpace(strings.ReplaceAll(contentType, `"`, ""))

	line, err = readMultipartLine(reader)
	if err != nil {
		return part, err
	}
	if strings.TrimSpace(line) != "" {
		return part, fmt.Errorf("%w: expected a blank line before part data, got %q", ErrMalformedPart, strings.TrimSpace(line))
	}

	rest, err := io.ReadAll(reader)
	if err != nil {
		return part, fmt.Errorf("%w: %v", ErrMalformedPart, err)
	}

	end := bytes.LastIndex(rest, []byte(delimiter+"--"))
	if end < 0 {
		return part, fmt.Errorf("%w: missing closing boundary %q", ErrMalformedPart, delimiter+"--")
	}
	part.Data = rest[:end]

	if bytes.Contains(part.Data, []byte(delimiter)) {
		return part, ErrMultipleParts
	}

	return part, nil
}

func parseContentDisposition(line string) (name string, fileName string, err error) {
	data, found := strings.CutPrefix(line, "Content-Disposition:")
	if !found {
		return "", "", fmt.Errorf("%w: expected a Content-Disposition line, got %q", ErrMalformedPart, strings.TrimSpace(line))
	}

	directives := strings.Split(data, ";")
	for i, directive := range directives {
		directives[i] = strings.TrimSpace(directive)
	}

	if directives[0] != "form-data" {
		return "", "", fmt.Errorf("%w: expected a form-data disposition, got %q", ErrMalformedPart, directives[0])
	}

	for _, directive := range directives[1:] {
		if value, found := strings.CutPrefix(directive, "name="); found {
			name = strings.ReplaceAll(value, `"`, "")
		}
		if value, found := strings.CutPrefix(directive, "filename="); found {
			fileName = strings.ReplaceAll(value, `"`, "")
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: missing name directive in Content-Disposition", ErrMalformedPart)
	}

	return name, fileName, nil
}

// readMultipartLine reads up to and including the next newline. A partial
// line at the end of input is returned as is.
func readMultipartLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: body ended before the part was complete", ErrMalformedPart)
	}
	return line, nil
}

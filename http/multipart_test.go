package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMultipartSingleTextPart(t *testing.T) {
	body := "--ExampleBoundaryString\n" +
		"Content-Disposition: form-data; name=\"description\"\n" +
		"Content-Type: text/html\n" +
		"\n" +
		"This is a description\n" +
		"--ExampleBoundaryString--"

	part, err := DecodeMultipart("ExampleBoundaryString", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, "description", part.Name)
	assert.Empty(t, part.FileName)
	assert.Equal(t, "text/html", part.ContentType)
	assert.Equal(t, []byte("This is a description\n"), part.Data)
}

func TestDecodeMultipartCRLF(t *testing.T) {
	body := "--b\r\n" +
		"Content-Disposition: form-data; name=\"upload\"; filename=\"example.txt\"\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"contents\r\n" +
		"--b--\r\n"

	part, err := DecodeMultipart("b", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, "upload", part.Name)
	assert.Equal(t, "example.txt", part.FileName)
	assert.Equal(t, "text/plain", part.ContentType)
	assert.Equal(t, []byte("contents\r\n"), part.Data)
}

func TestDecodeMultipartMultiplePartsRejected(t *testing.T) {
	body := "--delimiter123\n" +
		"Content-Disposition: form-data; name=\"field1\"\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"value1\n" +
		"--delimiter123\n" +
		"Content-Disposition: form-data; name=\"field2\"; filename=\"example.txt\"\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"value2\n" +
		"--delimiter123--"

	_, err := DecodeMultipart("delimiter123", []byte(body))
	assert.ErrorIs(t, err, ErrMultipleParts)
}

func TestDecodeMultipartBoundaryMismatch(t *testing.T) {
	body := "--other\n" +
		"Content-Disposition: form-data; name=\"description\"\n" +
		"Content-Type: text/html\n" +
		"\n" +
		"data\n" +
		"--other--"

	_, err := DecodeMultipart("expected", []byte(body))
	assert.ErrorIs(t, err, ErrBoundaryMismatch)
}

func TestDecodeMultipartMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing content disposition",
			body: "--b\nX-Whatever: 1\nContent-Type: text/plain\n\ndata\n--b--",
		},
		{
			name: "disposition is not form-data",
			body: "--b\nContent-Disposition: attachment; name=\"x\"\nContent-Type: text/plain\n\ndata\n--b--",
		},
		{
			name: "missing name directive",
			body: "--b\nContent-Disposition: form-data; filename=\"x\"\nContent-Type: text/plain\n\ndata\n--b--",
		},
		{
			name: "missing content type",
			body: "--b\nContent-Disposition: form-data; name=\"x\"\n\ndata\n--b--",
		},
		{
			name: "missing blank line",
			body: "--b\nContent-Disposition: form-data; name=\"x\"\nContent-Type: text/plain\ndata\n--b--",
		},
		{
			name: "missing closing boundary",
			body: "--b\nContent-Disposition: form-data; name=\"x\"\nContent-Type: text/plain\n\ndata",
		},
		{
			name: "truncated after boundary",
			body: "--b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMultipart("b", []byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedPart)
		})
	}
}

func TestMultipartBoundary(t *testing.T) {
	boundary, found := MultipartBoundary("multipart/form-data; boundary=ExampleBoundaryString")
	require.True(t, found)
	assert.Equal(t, "ExampleBoundaryString", boundary)

	boundary, found = MultipartBoundary(`multipart/form-data; boundary="quoted"`)
	require.True(t, found)
	assert.Equal(t, "quoted", boundary)

	_, found = MultipartBoundary("text/html")
	assert.False(t, found)

	_, found = MultipartBoundary("multipart/form-data; boundary=")
	assert.False(t, found)
}

func TestRequestMultipartBody(t *testing.T) {
	req := &Request{
		Headers: map[string]string{"Content-Type": "multipart/form-data; boundary=b"},
		Body: []byte("--b\n" +
			"Content-Disposition: form-data; name=\"description\"\n" +
			"Content-Type: text/plain\n" +
			"\n" +
			"data\n" +
			"--b--"),
	}

	part, err := req.MultipartBody()
	require.NoError(t, err)
	assert.Equal(t, "description", part.Name)
	assert.Equal(t, []byte("data\n"), part.Data)
}

func TestRequestMultipartBodyNotMultipart(t *testing.T) {
	req := &Request{Headers: map[string]string{"Content-Type": "text/html"}}
	_, err := req.MultipartBody()
	assert.ErrorIs(t, err, ErrNotMultipart)

	req = &Request{}
	_, err = req.MultipartBody()
	assert.ErrorIs(t, err, ErrNotMultipart)
}

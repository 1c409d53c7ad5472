package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseDefaults(t *testing.T) {
	resp := NewResponse()

	assert.Equal(t, Version11, resp.Version)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Contains(t, resp.Headers, "Date")
	assert.Empty(t, resp.Body)
}

func TestResponseBytes(t *testing.T) {
	date := time.Date(2024, time.October, 29, 16, 56, 32, 0, time.UTC)

	resp := NewResponse().
		WithDate(date).
		WithHtml("<p>Hello World</p>").
		AddCookie(Cookie{Name: "foo", Value: "bar", HttpOnly: true, Path: "/some/path"}).
		AddCookie(Cookie{Name: "User", Value: "jhondoe", Secure: true, SameSite: SameSiteLaxMode})

	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Length: 18\r\n" +
		"Content-Type: text/html\r\n" +
		"Date: Tue, 29 Oct 2024 16:56:32 UTC\r\n" +
		"Set-Cookie: User=jhondoe; SameSite=Lax; Secure\r\n" +
		"Set-Cookie: foo=bar; HttpOnly; Path=/some/path\r\n" +
		"\r\n" +
		"<p>Hello World</p>"

	got, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestResponseBytesMissingStatus(t *testing.T) {
	resp := &Response{Version: Version11}

	_, err := resp.Bytes()
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func TestResponseBytesInvalidCookie(t *testing.T) {
	resp := NewResponse().AddCookie(Cookie{Name: "f<oo", Value: "bar"})

	_, err := resp.Bytes()
	assert.ErrorIs(t, err, ErrInvalidCookieName)
}

func TestResponseWithStatus(t *testing.T) {
	assert.Equal(t, "404 Not Found", NewResponse().WithStatus(StatusNotFound).Status)
	assert.Equal(t, "299 Custom", NewResponse().WithStatusText("299 Custom").Status)
}

func TestResponseWithJson(t *testing.T) {
	resp, err := NewResponse().WithJson(map[string]string{"name": "John"})
	require.NoError(t, err)

	assert.Equal(t, `{"name":"John"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "15", resp.Headers["Content-Length"])
}

func TestResponseWithJsonUnsupportedValue(t *testing.T) {
	_, err := NewResponse().WithJson(func() {})
	assert.Error(t, err)
}

func TestResponseZeroValueUsable(t *testing.T) {
	resp := (&Response{}).
		WithStatus(StatusAccepted).
		WithText("queued").
		AddCookie(Cookie{Name: "foo", Value: "bar"})

	assert.Equal(t, "202 Accepted", resp.Status)
	assert.Equal(t, "text/plain", resp.Headers["Content-Type"])
	assert.Equal(t, "6", resp.Headers["Content-Length"])
	assert.Equal(t, "bar", resp.Cookies["foo"].Value)
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "200 OK", StatusLine(StatusOK))
	assert.Equal(t, "404 Not Found", StatusLine(StatusNotFound))
	assert.Equal(t, "418 I'm a teapot", StatusLine(StatusTeapot))

	// 306 is a gap in the registry, 999 is past its end.
	assert.Equal(t, "306 Unknown Status Code", StatusLine(306))
	assert.Equal(t, "999 Unknown Status Code", StatusLine(999))
}

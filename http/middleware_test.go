package http

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basaltio/basalt/session"
)

func TestRecoverMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter()
	require.NoError(t, router.GET("/panic", HandlerFunc(func(req *Request, params Params) (*Response, error) {
		panic("kaboom")
	}), RecoverMiddleware(logger)))

	resp, err := router.Serve(newTestRequest(t, MethodGet, "/panic"))
	require.NoError(t, err)
	assert.Equal(t, "500 Internal Server Error", resp.Status)
	assert.Equal(t, []byte("something went wrong"), resp.Body)
}

func TestSessionMiddlewareCreatesSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)

	router := NewRouter()
	router.Use(SessionMiddleware(store, "SID", time.Minute))
	require.NoError(t, router.GET("/hello", HandlerFunc(func(req *Request, params Params) (*Response, error) {
		// the fresh cookie is visible to the handler
		cookie, err := req.Cookie("SID")
		require.NoError(t, err)
		assert.True(t, store.Has(cookie.Value))
		return NewResponse().WithText("hi"), nil
	})))

	resp, err := router.Serve(newTestRequest(t, MethodGet, "/hello"))
	require.NoError(t, err)

	setCookie, found := resp.Cookies["SID"]
	require.True(t, found)
	assert.NotEmpty(t, setCookie.Value)
	assert.True(t, setCookie.HttpOnly)
	require.NotNil(t, setCookie.MaxAge)
	assert.Equal(t, int32(60), *setCookie.MaxAge)
	assert.Equal(t, "/", setCookie.Path)
	assert.Equal(t, SameSiteLaxMode, setCookie.SameSite)
	assert.True(t, store.Has(setCookie.Value))
}

func TestSessionMiddlewareKeepsLiveSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	require.NoError(t, store.Save(session.New("existing")))

	router := NewRouter()
	router.Use(SessionMiddleware(store, "SID", time.Minute))
	require.NoError(t, router.GET("/hello", textHandler("hi")))

	req := newTestRequest(t, MethodGet, "/hello")
	req.Cookies = map[string]Cookie{"SID": {Name: "SID", Value: "existing"}}

	resp, err := router.Serve(req)
	require.NoError(t, err)

	// no fresh cookie rides back for a live session
	_, found := resp.Cookies["SID"]
	assert.False(t, found)
}

func TestSessionMiddlewareReplacesDeadSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)

	router := NewRouter()
	router.Use(SessionMiddleware(store, "SID", time.Minute))
	require.NoError(t, router.GET("/hello", textHandler("hi")))

	req := newTestRequest(t, MethodGet, "/hello")
	req.Cookies = map[string]Cookie{"SID": {Name: "SID", Value: "gone"}}

	resp, err := router.Serve(req)
	require.NoError(t, err)

	setCookie, found := resp.Cookies["SID"]
	require.True(t, found)
	assert.NotEqual(t, "gone", setCookie.Value)
	assert.True(t, store.Has(setCookie.Value))
}

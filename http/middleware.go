package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/basaltio/basalt/session"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware converts a handler panic into a plain 500 response.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req *Request, params Params) (resp *Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked", "panic", r, "url", req.URL)
					resp = NewResponse().
						WithStatus(StatusInternalServerError).
						WithText("something went wrong")
					err = nil
				}
			}()

			return next.Serve(req, params)
		})
	}
}

// SessionMiddleware guarantees that every request reaching the handler
// carries a session cookie backed by a live entry in store. A request
// without the cookie, or whose session has expired, gets a fresh session
// whose cookie rides back on the response.
func SessionMiddleware(store session.Store, cookieName string, ttl time.Duration) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req *Request, params Params) (*Response, error) {
			existing, err := req.Cookie(cookieName)
			if err == nil && store.Has(existing.Value) {
				return next.Serve(req, params)
			}

			sess := session.New(uuid.NewString())
			if err := store.Save(sess); err != nil {
				return nil, fmt.Errorf("http: save new session: %w", err)
			}

			maxAge := int32(ttl / time.Second)
			cookie := Cookie{
				Name:     cookieName,
				Value:    sess.ID,
				HttpOnly: true,
				MaxAge:   &maxAge,
				Path:     "/",
				SameSite: SameSiteLaxMode,
			}

			if req.Cookies == nil {
				req.Cookies = make(map[string]Cookie)
			}
			req.Cookies[cookieName] = cookie

			resp, err := next.Serve(req, params)
			if resp != nil {
				resp.AddCookie(cookie)
			}
			return resp, err
		})
	}
}

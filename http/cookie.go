package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SameSite int

const (
	SameSiteDefaultMode SameSite = iota + 1
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

var (
	ErrInvalidCookie      = errors.New("http: invalid cookie format")
	ErrInvalidCookieName  = errors.New("http: invalid character in cookie name")
	ErrInvalidCookieValue = errors.New("http: invalid character in cookie value")
	ErrCookieSameSiteNone = errors.New("http: cookie with SameSite=None requires Secure")
)

const (
	bannedCookieNameChars  = `()<>@,;:\"/[]?={}`
	bannedCookieValueChars = `"',;\`
)

// cookieTimeFormats are the layouts accepted for the Expires attribute,
// RFC 2822 style dates with either a numeric zone or a zone name.
var cookieTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
}

// Cookie is one Set-Cookie response header or one name/value pair of a
// request Cookie header. A nil MaxAge means the attribute is absent;
// a zero Expires likewise.
type Cookie struct {
	Name  string
	Value string

	Domain      string
	Expires     time.Time
	HttpOnly    bool
	MaxAge      *int32
	Partitioned bool
	Path        string
	SameSite    SameSite
	Secure      bool
}

// Valid reports whether the cookie can be serialized: name and value must
// pass character validation and SameSite=None must be paired with Secure.
func (c *Cookie) Valid() error {
	if !isValidCookieName(c.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidCookieName, c.Name)
	}
	if !isValidCookieValue(c.Value) {
		return fmt.Errorf("%w: %q", ErrInvalidCookieValue, c.Value)
	}
	if c.SameSite == SameSiteNoneMode && !c.Secure {
		return ErrCookieSameSiteNone
	}
	return nil
}

// Serialize renders the cookie as a Set-Cookie header value: name=value
// followed by the present attributes in fixed order, joined by "; ".
func (c *Cookie) Serialize() (string, error) {
	if err := c.Valid(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(time.RFC1123Z))
	}

	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	if c.MaxAge != nil {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.FormatInt(int64(*c.MaxAge), 10))
	}

	if c.Partitioned {
		b.WriteString("; Partitioned")
	}

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}

	switch c.SameSite {
	case SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}

	if c.Secure {
		b.WriteString("; Secure")
	}

	return b.String(), nil
}

// ParseSetCookie parses one Set-Cookie header value. The first directive
// must be name=value. Attribute directives are matched by case-sensitive
// prefix; unknown directives are ignored. A malformed Expires, Max-Age or
// SameSite value fails the parse.
func ParseSetCookie(line string) (Cookie, error) {
	var cookie Cookie

	directives := strings.Split(line, ";")
	name, value, found := strings.Cut(strings.TrimSpace(directives[0]), "=")
	if !found {
		return cookie, fmt.Errorf("%w: must start with name=value", ErrInvalidCookie)
	}
	cookie.Name = name
	cookie.Value = value

	for _, directive := range directives[1:] {
		directive = strings.TrimSpace(directive)

		switch {
		case strings.HasPrefix(directive, "Domain="):
			cookie.Domain = strings.TrimPrefix(directive, "Domain=")
		case strings.HasPrefix(directive, "Expires="):
			expires, err := parseCookieTime(strings.TrimPrefix(directive, "Expires="))
			if err != nil {
				return cookie, err
			}
			cookie.Expires = expires
		case directive == "HttpOnly":
			cookie.HttpOnly = true
		case strings.HasPrefix(directive, "Max-Age="):
			raw := strings.TrimPrefix(directive, "Max-Age=")
			maxAge, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return cookie, fmt.Errorf("%w: Max-Age %q is not a 32-bit integer", ErrInvalidCookie, raw)
			}
			age := int32(maxAge)
			cookie.MaxAge = &age
		case directive == "Partitioned":
			cookie.Partitioned = true
		case strings.HasPrefix(directive, "Path="):
			cookie.Path = strings.TrimPrefix(directive, "Path=")
		case strings.HasPrefix(directive, "SameSite="):
			switch strings.TrimPrefix(directive, "SameSite=") {
			case "Strict":
				cookie.SameSite = SameSiteStrictMode
			case "Lax":
				cookie.SameSite = SameSiteLaxMode
			case "None":
				cookie.SameSite = SameSiteNoneMode
			default:
				return cookie, fmt.Errorf("%w: unknown SameSite policy %q", ErrInvalidCookie, directive)
			}
		case directive == "Secure":
			cookie.Secure = true
		}
	}

	return cookie, nil
}

func parseCookieTime(value string) (time.Time, error) {
	for _, format := range cookieTimeFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable Expires date %q", ErrInvalidCookie, value)
}

// isValidCookieName permits printable ASCII without whitespace, minus the
// separator characters ()<>@,;:\"/[]?={}. Names must be non-empty.
func isValidCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= 0x20 || r >= 0x7f || strings.ContainsRune(bannedCookieNameChars, r) {
			return false
		}
	}
	return true
}

// isValidCookieValue permits printable ASCII without whitespace, minus
// "',;\ . The value may be wrapped in one pair of double quotes, which are
// not themselves validated.
func isValidCookieValue(value string) bool {
	if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	for _, r := range value {
		if r <= 0x20 || r >= 0x7f || strings.ContainsRune(bannedCookieValueChars, r) {
			return false
		}
	}
	return true
}

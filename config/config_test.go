package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
name: demo
addr: ":9000"
workers: 8
notFoundPage: pages/404.html
mounts:
  - route: /static
    path: /srv/static
    kind: dir
  - route: /favicon.ico
    path: /srv/static/favicon.ico
    kind: file
session:
  cookieName: BASALT_SID
  ttlSeconds: 60
log:
  level: debug
  format: json
telemetry:
  otlpEndpoint: localhost:4317
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "pages/404.html", cfg.NotFoundPage)
	assert.Equal(t, []Mount{
		{Route: "/static", Path: "/srv/static", Kind: "dir"},
		{Route: "/favicon.ico", Path: "/srv/static/favicon.ico", Kind: "file"},
	}, cfg.Mounts)
	assert.Equal(t, "BASALT_SID", cfg.Session.CookieName)
	assert.Equal(t, time.Minute, cfg.SessionTTL())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("name: demo\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "SID", cfg.Session.CookieName)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty addr", raw: `addr: ""`},
		{name: "zero workers", raw: "workers: 0"},
		{name: "zero session ttl", raw: "session:\n  ttlSeconds: 0"},
		{name: "mount without path", raw: "mounts:\n  - route: /static\n    kind: dir"},
		{name: "mount with unknown kind", raw: "mounts:\n  - route: /static\n    path: /srv\n    kind: potato"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseBrokenYaml(t *testing.T) {
	_, err := Parse([]byte("mounts: [what"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

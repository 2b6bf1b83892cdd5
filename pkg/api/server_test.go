package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/middleware"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex/vortextest"
)

type testEnv struct {
	server   *Server
	upstream *vortextest.Server
	client   *vortex.Client
	sessions *session.Manager
	metrics  *observability.Metrics
}

type testOption func(*Config, *string)

func withConfig(fn func(*Config)) testOption {
	return func(c *Config, _ *string) { fn(c) }
}

func withAPIKey(key string) testOption {
	return func(_ *Config, k *string) { *k = key }
}

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	cfg := Config{
		Prefix:         "/api",
		DevEndpoints:   true,
		LoginRateLimit: middleware.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	key := vortextest.APIKey
	for _, opt := range opts {
		opt(&cfg, &key)
	}

	upstream := vortextest.NewServer(t)
	client := vortex.NewClient(key, vortex.WithBaseURL(upstream.URL))

	dir := directory.Default()
	sessions := session.NewManager(dir, session.NewMemoryStore())
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	server := NewServer(cfg, Dependencies{
		Sessions:    sessions,
		Users:       dir,
		Issuer:      claims.NewIssuer(client),
		Invitations: invitations.NewManager(client, invitations.WithLogger(logger)),
		Logger:      logger,
		Metrics:     metrics,
	})

	return &testEnv{
		server:   server,
		upstream: upstream,
		client:   client,
		sessions: sessions,
		metrics:  metrics,
	}
}

// do sends a request through the full middleware chain
func (e *testEnv) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			data, _ := json.Marshal(body)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// login opens a session and returns its cookie
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "secret": "password123"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.DefaultCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/nonexistent", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestServer_RequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/auth/me", nil, nil)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_CustomPrefix(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *Config) { c.Prefix = "bridge/" }))

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/bridge/auth/me", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/auth/me", nil, nil).Code)
}

func TestServer_VortexRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/vortex/jwt"},
		{http.MethodGet, "/api/vortex/invitations?targetType=workspace&targetValue=ws-1"},
		{http.MethodGet, "/api/vortex/invitations/inv-1"},
		{http.MethodDelete, "/api/vortex/invitations/inv-1"},
		{http.MethodPost, "/api/vortex/invitations/accept"},
		{http.MethodGet, "/api/vortex/invitations/by-group/workspace/ws-1"},
		{http.MethodDelete, "/api/vortex/invitations/by-group/workspace/ws-1"},
		{http.MethodPost, "/api/vortex/invitations/inv-1/reinvite"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := env.do(rt.method, rt.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		})
	}

	assert.Empty(t, env.upstream.Calls(), "no upstream call without a session")
}

func TestServer_LoginThrottle(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *Config) {
		c.LoginRateLimit = middleware.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2}
	}))

	bad := map[string]string{"email": "bob@example.com", "secret": "wrong"}
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/auth/login", bad, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/auth/login", bad, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/auth/login", bad, nil).Code)
}

func TestServer_CORS(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *Config) { c.CORSOrigins = []string{"http://localhost:3000"} }))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestServer_Metrics(t *testing.T) {
	env := newTestEnv(t)

	env.login(t, "bob@example.com")
	env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "bob@example.com", "secret": "nope"}, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.LoginsTotal.WithLabelValues("invalid_credentials")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/auth/login", "401")))
}

func TestServer_StartBackground(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	env.server.StartBackground(ctx)
	cancel()
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-auth/internal/api"
	"github.com/taibuivan/yomira-auth/internal/platform/config"
	"github.com/taibuivan/yomira-auth/internal/platform/sec"
	"github.com/taibuivan/yomira-auth/internal/platform/secret"
	"github.com/taibuivan/yomira-auth/internal/platform/workerpool"
	"github.com/taibuivan/yomira-auth/internal/users/auth"
	"github.com/taibuivan/yomira-auth/internal/users/auth/authtest"
)

func newTestServer(t *testing.T, checkDatabase func(ctx context.Context) error) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	pool := workerpool.New(1, 4)
	t.Cleanup(func() { _ = pool.Close() })
	hasher := sec.NewPooledHasher(pool)

	codec, err := sec.NewTokenCodec("yomira-auth", "yomira-web",
		secret.New(strings.Repeat("a", 32)), secret.New(strings.Repeat("r", 32)))
	require.NoError(t, err)

	service := auth.NewService(authtest.NewMemoryStore(), hasher, codec, auth.ServiceOptions{})
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{CheckDatabase: checkDatabase}, logger)

	cfg := &config.Config{ServerPort: "0", ClientURL: "https://app.example"}
	server := api.NewServer(cfg, logger, codec, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(service),
	})
	return server.Handler()
}

/*
TestServer_HealthProbes verifies liveness and database-backed readiness.
*/
func TestServer_HealthProbes(t *testing.T) {
	healthy := newTestServer(t, func(context.Context) error { return nil })
	broken := newTestServer(t, func(context.Context) error { return errors.New("dial tcp: connection refused") })

	recorder := httptest.NewRecorder()
	healthy.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	healthy.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ready"`)

	recorder = httptest.NewRecorder()
	broken.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
	assert.NotContains(t, recorder.Body.String(), "connection refused")
}

/*
TestServer_AuthRoutes verifies the auth handler is mounted behind the middleware chain.
*/
func TestServer_AuthRoutes(t *testing.T) {
	handler := newTestServer(t, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"username":"alice","password":"Secret123!"}`))
	request.Header.Set("Origin", "https://app.example")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://app.example", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Set-Cookie"), "rt=")

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

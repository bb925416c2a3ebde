package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:  config.AppEnvDev,
			Port: "8080",
		},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "toolshare-test",
			ExpirationMinutes: 15,
			SessionTTLMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:    time.Minute,
			RegisterWindow: time.Minute,
		},
	}
}

func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()

	return NewRouter(RouterParams{
		Config: testRouterConfig(),
		Logger: logger.New(logger.Options{ServiceName: "router-test"}),
	})
}

func TestHealthLiveEndpoint(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.AppEnvDev, rec.Header().Get("X-ToolShare-Env"))

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "live", envelope.Data["status"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := buildTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodGet, "/api/v1/me/activity"},
		{http.MethodPost, "/api/v1/tools"},
		{http.MethodPost, "/api/v1/reservations"},
		{http.MethodPost, "/api/v1/ratings"},
		{http.MethodDelete, "/api/admin/v1/users/00000000-0000-0000-0000-000000000001"},
	}

	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

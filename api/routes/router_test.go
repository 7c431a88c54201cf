package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migios-apps/migios-console-api/pkg/config"
	"github.com/migios-apps/migios-console-api/pkg/logger"
	"github.com/migios-apps/migios-console-api/pkg/types"
)

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config: &config.Config{
			App:   config.AppConfig{Env: "development"},
			JWT:   config.JWTConfig{Secret: "test-secret", Issuer: "migios"},
			Draft: config.DraftConfig{DefaultTerminal: "console"},
			CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
}

func TestHealthLive(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "development", w.Header().Get("X-Migios-Env"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, "live", envelope.Data.(map[string]any)["status"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/checkout/draft"},
		{http.MethodGet, "/api/v1/checkout/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/search/members"},
	}

	for _, target := range targets {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(target.method, target.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", target.method, target.path)
	}
}

func TestHealthReadyReportsDownDependencies(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code, "uninitialized clients must fail readiness, not panic")

	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, "DEPENDENCY_ERROR", envelope.Error.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

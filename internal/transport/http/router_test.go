package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/internal/consent/handler"
	"consentd/internal/consent/service"
	"consentd/internal/consent/store"
	"consentd/internal/jwt"
	"consentd/internal/platform/middleware"
)

// newTestRouter wires the full stack: real router, middleware, JWT service,
// consent service and in-memory store.
func newTestRouter(t *testing.T, health func() error) (http.Handler, *jwt.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewService("router-test-key", time.Minute)
	consents := service.NewService(store.New(), nil, logger)

	router := NewRouter(RouterConfig{
		Consent:        handler.New(consents, logger),
		TokenValidator: tokens,
		Metadata:       middleware.NewMetadata(nil),
		Health:         health,
		Logger:         logger,
	})
	return router, tokens
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router, _ := newTestRouter(t, nil)

		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("unhealthy dependency", func(t *testing.T) {
		router, _ := newTestRouter(t, func() error { return errors.New("db down") })

		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestConsentFlow(t *testing.T) {
	router, tokens := newTestRouter(t, nil)

	token, err := tokens.GenerateToken("tester", false)
	require.NoError(t, err)
	adminToken, err := tokens.GenerateToken("ops", true)
	require.NoError(t, err)

	do := func(method, target, bearer, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.RemoteAddr = "203.0.113.7:44321"
		req.Header.Set("User-Agent", "router-test/1.0")
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		return res
	}

	// Record a consent as the authenticated user.
	res := do(http.MethodPost, "/api/legal/consents", token,
		`{"terms_version":"v1.2","privacy_version":"v1.0","source":"signup"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	id := created["id"].(string)
	assert.Equal(t, "tester", created["identity"])
	assert.Equal(t, "203.0.113.7", created["ip_address"])
	assert.Equal(t, "router-test/1.0", created["client_agent"])

	// The owner sees it in /me.
	res = do(http.MethodGet, "/api/legal/consents/me", token, "")
	require.Equal(t, http.StatusOK, res.Code)
	var listed map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&listed))
	assert.Equal(t, float64(1), listed["count"])

	// Anonymous /me is unauthorized.
	res = do(http.MethodGet, "/api/legal/consents/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// Anonymous detail access on an existing record is forbidden, not 401.
	res = do(http.MethodGet, "/api/legal/consents/"+id, "", "")
	assert.Equal(t, http.StatusForbidden, res.Code)

	// /all is admin-only.
	res = do(http.MethodGet, "/api/legal/consents/all", token, "")
	assert.Equal(t, http.StatusForbidden, res.Code)
	res = do(http.MethodGet, "/api/legal/consents/all", adminToken, "")
	assert.Equal(t, http.StatusOK, res.Code)

	// Revoke as owner, then again: both succeed, stamp unchanged.
	res = do(http.MethodPost, "/api/legal/consents/"+id+"/revoke", token, "")
	require.Equal(t, http.StatusOK, res.Code)
	var revoked map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&revoked))
	first := revoked["consent"].(map[string]any)["revoked_at"]

	res = do(http.MethodPost, "/api/legal/consents/"+id+"/revoke", token, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&revoked))
	assert.Equal(t, first, revoked["consent"].(map[string]any)["revoked_at"])

	// Garbage token is rejected at the middleware.
	res = do(http.MethodGet, "/api/legal/consents/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

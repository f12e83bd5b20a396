package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"consentd/pkg/requestcontext"
)

type stubValidator struct {
	claims *TokenClaims
	err    error
}

func (s *stubValidator) ValidateToken(string) (*TokenClaims, error) {
	return s.claims, s.err
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	run := func(validator TokenValidator, authHeader string) (*httptest.ResponseRecorder, string, bool) {
		var subject string
		var admin bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject = requestcontext.Subject(r.Context())
			admin = requestcontext.Admin(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		res := httptest.NewRecorder()
		Authenticate(validator, logger)(next).ServeHTTP(res, req)
		return res, subject, admin
	}

	t.Run("no header passes through as anonymous", func(t *testing.T) {
		res, subject, admin := run(&stubValidator{}, "")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Empty(t, subject)
		assert.False(t, admin)
	})

	t.Run("valid token resolves caller", func(t *testing.T) {
		validator := &stubValidator{claims: &TokenClaims{Subject: "tester", Admin: true}}
		res, subject, admin := run(validator, "Bearer good-token")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "tester", subject)
		assert.True(t, admin)
	})

	t.Run("invalid token is rejected, not downgraded", func(t *testing.T) {
		validator := &stubValidator{err: errors.New("expired")}
		res, _, _ := run(validator, "Bearer bad-token")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("malformed scheme is rejected", func(t *testing.T) {
		res, _, _ := run(&stubValidator{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

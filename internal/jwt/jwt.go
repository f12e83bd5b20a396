// Package jwt issues and validates the bearer tokens consentd accepts.
// Tokens carry the caller's subject and an admin flag; consentd does not run
// its own login flow, so in production the signing key is shared with the
// identity provider that mints these tokens.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"consentd/internal/platform/middleware"
	dErrors "consentd/pkg/domain-errors"
)

const (
	// Issuer identifies tokens minted by consentd's own tooling (tokengen).
	Issuer = "consentd"

	// Audience restricts accepted tokens to this service.
	Audience = "consentd-api"
)

// Claims are the JWT claims consentd reads.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation with a shared HMAC key.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewService constructs a token service. TTL applies to generated tokens only.
func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// GenerateToken mints a signed token for the given subject.
func (s *Service) GenerateToken(subject string, admin bool) (string, error) {
	if subject == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Audience:  []string{Audience},
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, expiry and audience, and returns the
// claims the auth middleware needs.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing algorithm")
		}
		return s.signingKey, nil
	},
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token signature")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token parse failed")
	}
	if !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}

	return &middleware.TokenClaims{
		Subject: claims.Subject,
		Admin:   claims.Admin,
	}, nil
}

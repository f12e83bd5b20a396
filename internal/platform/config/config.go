package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean; a local .env file is honored when present.
type Server struct {
	Addr           string
	DatabaseURL    string
	JWTSigningKey  string
	TokenTTL       time.Duration
	TrustedProxies []netip.Prefix
	AuditBuffer    int
}

const (
	defaultAddr        = ":8080"
	defaultTokenTTL    = 15 * time.Minute
	defaultAuditBuffer = 256

	// Dev fallback, must be overridden in production.
	devSigningKey = "dev-secret-key-change-in-production"
)

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Server{
		Addr:          defaultAddr,
		TokenTTL:      defaultTokenTTL,
		JWTSigningKey: devSigningKey,
		AuditBuffer:   defaultAuditBuffer,
	}

	if addr := os.Getenv("CONSENTD_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.DatabaseURL = os.Getenv("CONSENTD_DATABASE_URL")
	if key := os.Getenv("CONSENTD_JWT_SIGNING_KEY"); key != "" {
		cfg.JWTSigningKey = key
	}
	if ttl := os.Getenv("CONSENTD_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	cfg.TrustedProxies = parseProxies(os.Getenv("CONSENTD_TRUSTED_PROXIES"))
	if buf := os.Getenv("CONSENTD_AUDIT_BUFFER"); buf != "" {
		if n, err := strconv.Atoi(buf); err == nil && n >= 0 {
			cfg.AuditBuffer = n
		}
	}

	return cfg
}

// parseProxies reads a comma-separated list of CIDR prefixes. Invalid entries
// are dropped rather than failing startup; an empty list means X-Forwarded-For
// is never trusted.
func parseProxies(raw string) []netip.Prefix {
	if raw == "" {
		return nil
	}
	var prefixes []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(part); err == nil {
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// Package main provides a CLI tool for generating test tokens for the
// consentd API. These tokens use the dev signing key by default and will NOT
// work against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"consentd/internal/jwt"
)

const (
	// Dev signing key, matches config.go when CONSENTD_JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Subject   string            `json:"subject"`
	Admin     bool              `json:"admin"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	subject := flag.String("subject", "tester", "Token subject (user identity)")
	admin := flag.Bool("admin", false, "Grant administrator privilege")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := flag.String("key", devSigningKey, "HMAC signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "error: -subject must not be empty")
		os.Exit(1)
	}

	svc := jwt.NewService(*key, *ttl)
	token, err := svc.GenerateToken(*subject, *admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to generate token: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     token,
			Subject:   *subject,
			Admin:     *admin,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer " + token,
			},
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to encode output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(token)
}

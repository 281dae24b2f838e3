//go:build ignore

// This script generates an admin JWT for the ledger's /admin endpoints.
// Run with: go run scripts/generate-admin-jwt.go
//
// The secret and issuer must match auth.admin_jwt_secret and
// auth.admin_issuer in the server configuration.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	issuer := os.Getenv("ADMIN_JWT_ISSUER")
	if issuer == "" {
		issuer = "airdrop-ledger"
	}

	subject := os.Getenv("ADMIN_JWT_SUBJECT")
	if subject == "" {
		subject = "operator"
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}

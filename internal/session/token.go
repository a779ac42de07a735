package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the marketplace access token the client reads.
type TokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// PeekClaims reads the claims of a marketplace token without verifying its
// signature. Verification is the server's job; the client only needs expiry
// and role hints for must-log-in checks.
func PeekClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an expiry in the past. A
// token without expiry, or one that cannot be parsed, is treated as expired
// only when unparseable.
func TokenExpired(token string, now time.Time) bool {
	claims, err := PeekClaims(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

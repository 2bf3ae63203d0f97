package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of access-token claims the client needs.
// The token is decoded without signature verification; it only carries
// the user id the backend issued it for, and the backend re-validates
// it on every request.
type TokenClaims struct {
	UserID    int64
	ExpiresAt time.Time
}

// DecodeToken extracts the user id and expiry from a JWT access token.
func DecodeToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}

	rawID, ok := claims["user_id"]
	if !ok {
		return nil, fmt.Errorf("access token has no user_id claim")
	}
	id, ok := rawID.(float64)
	if !ok {
		return nil, fmt.Errorf("access token user_id claim is not numeric")
	}

	tc := &TokenClaims{UserID: int64(id)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}

	return tc, nil
}

// Expired reports whether the token expiry has passed. Tokens without
// an exp claim are treated as unexpired.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

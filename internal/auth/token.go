// Package auth decodes the host game's API bearer token. Tokens are
// issued and signed by the game's servers; the bot only needs the
// claims, so they are parsed without signature verification.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrExpiredToken = errors.New("token expired")

// Claims holds the JWT payload fields the bot cares about.
type Claims struct {
	Address   string `json:"address"`
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Decode parses the token claims without verifying the signature.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Check decodes the token and fails if it has already expired, so the
// bot refuses to start a session that would 401 mid-run.
func Check(raw string, now time.Time) (*Claims, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w at %s", ErrExpiredToken, claims.ExpiresAt.Time)
	}
	return claims, nil
}

// TimeLeft reports how long the token remains valid; ok is false when
// the token carries no expiry.
func TimeLeft(claims *Claims, now time.Time) (time.Duration, bool) {
	if claims.ExpiresAt == nil {
		return 0, false
	}
	return claims.ExpiresAt.Time.Sub(now), true
}

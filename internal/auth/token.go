package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the gateway can learn from a session token without the
// API's signing key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ReadClaims decodes a JWT without verifying its signature. ok is false
// when the token is not a JWT; callers then treat it as opaque.
func ReadClaims(token string) (Claims, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, false
	}

	var c Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}

// Expired reports whether the token carries an exp claim at or before now.
func Expired(token string, now time.Time) bool {
	c, ok := ReadClaims(token)
	if !ok || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

package jwt

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is the subset of an access token the client can read without the
// signing key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim at all.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the token is past its exp claim, allowing skew.
// Tokens without exp never expire.
func (c Claims) Expired(now time.Time, skew time.Duration) bool {
	if !c.HasExpiry() {
		return false
	}
	return now.After(c.ExpiresAt.Add(skew))
}

// Inspect decodes a JWT without verifying its signature. The signature can
// only be checked by the backend; this is used to notice stale tokens early.
func Inspect(token string) (Claims, error) {
	parsed, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return Claims{}, fmt.Errorf("failed to parse token: %w", err)
	}

	return Claims{
		Subject:   parsed.Subject(),
		ExpiresAt: parsed.Expiration(),
	}, nil
}

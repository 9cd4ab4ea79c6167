package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Unverified inspection helpers. Clients hold tokens but not the signing
// secret, so expiry countdowns and renewal scheduling work on decoded
// claims alone. Nothing here is an access decision; the server re-verifies
// every request.

// DecodeUnverified parses claims without verifying the signature.
// Malformed input yields nil.
func DecodeUnverified(tokenString string) *Claims {
	tokenString = StripBearer(tokenString)
	if tokenString == "" {
		return nil
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// Expired reports whether the token's decoded expiry has passed.
// Malformed tokens are always reported expired.
func Expired(tokenString string) bool {
	claims := DecodeUnverified(tokenString)
	if claims == nil {
		return true
	}
	exp := claims.expiresAt()
	return exp.IsZero() || !exp.After(time.Now())
}

// RemainingValidity returns the token's remaining validity, floored at
// zero. Malformed tokens report zero.
func RemainingValidity(tokenString string) time.Duration {
	claims := DecodeUnverified(tokenString)
	if claims == nil {
		return 0
	}
	exp := claims.expiresAt()
	if exp.IsZero() {
		return 0
	}
	remaining := time.Until(exp)
	if remaining < 0 {
		return 0
	}
	return remaining
}

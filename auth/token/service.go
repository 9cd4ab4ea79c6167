// Package token issues and verifies the signed session tokens carrying
// identity claims. Tokens are HS256 JWTs with fixed issuer/audience and a
// random unique identifier per issuance.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/connexa-app/connexa/auth"
)

// Verification failure reasons. Verify always returns one of these (possibly
// wrapped) so callers can map them to response codes.
var (
	ErrMissingToken        = errors.New("token: no token provided")
	ErrInvalidSignature    = errors.New("token: invalid signature")
	ErrExpired             = errors.New("token: expired")
	ErrNotYetValid         = errors.New("token: not yet valid")
	ErrWrongIssuerAudience = errors.New("token: wrong issuer or audience")
	ErrMalformed           = errors.New("token: malformed")
	ErrMissingSubject      = errors.New("token: subject id and email are required")
)

// Service issues and verifies signed tokens.
type Service struct {
	cfg Config
	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a token service from config.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	return &Service{cfg: cfg, now: time.Now}, nil
}

// Issue creates a signed access token for the given user.
// Subject id and email are required.
func (s *Service) Issue(id int64, email, name string, role auth.Role) (string, error) {
	return s.issue(id, email, name, role, TypeAccess, s.cfg.AccessTokenTTL)
}

// IssueRefresh creates a signed refresh token for the given user.
func (s *Service) IssueRefresh(id int64, email string, role auth.Role) (string, error) {
	return s.issue(id, email, "", role, TypeRefresh, s.cfg.RefreshTokenTTL)
}

func (s *Service) issue(id int64, email, name string, role auth.Role, typ Type, ttl time.Duration) (string, error) {
	if id == 0 || email == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", id),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id,
		Email:     email,
		Name:      name,
		Role:      role,
		TokenID:   uuid.NewString(),
		TokenType: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and algorithm, then re-checks
// expiry against the current time independently of the library's own
// validation. An optional "Bearer " prefix is stripped.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	tokenString = StripBearer(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
	)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	// The library already rejects expired tokens; check again here so a
	// claims struct with a missing exp cannot slip through.
	exp := claims.expiresAt()
	if exp.IsZero() || !exp.After(s.now()) {
		return nil, ErrExpired
	}

	return claims, nil
}

// Decode parses claims without verifying the signature. The result must
// never be used for access decisions; it exists for non-authoritative
// inspection such as expiry countdowns. Malformed input yields nil.
func (s *Service) Decode(tokenString string) *Claims {
	return DecodeUnverified(tokenString)
}

// IsExpired reports whether the token's decoded expiry has passed.
// Malformed tokens are always reported expired.
func (s *Service) IsExpired(tokenString string) bool {
	claims := DecodeUnverified(tokenString)
	if claims == nil {
		return true
	}
	exp := claims.expiresAt()
	return exp.IsZero() || !exp.After(s.now())
}

// TimeToExpiry returns the remaining validity of the token, floored at
// zero. Malformed tokens report zero.
func (s *Service) TimeToExpiry(tokenString string) time.Duration {
	claims := DecodeUnverified(tokenString)
	if claims == nil {
		return 0
	}
	exp := claims.expiresAt()
	if exp.IsZero() {
		return 0
	}
	remaining := exp.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StripBearer removes an optional "Bearer " scheme prefix.
func StripBearer(tokenString string) string {
	tokenString = strings.TrimSpace(tokenString)
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		return strings.TrimSpace(tokenString[7:])
	}
	return tokenString
}

func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidSignature, t.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

// mapParseError converts golang-jwt errors to this package's sentinels.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrWrongIssuerAudience
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
}

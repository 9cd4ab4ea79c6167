package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/connexa-app/connexa/auth"
)

// Type tags a token as access or refresh. The tag is informational:
// verification does not discriminate on it, so a refresh token
// authenticates like an access token, only with a longer lifetime.
type Type string

const (
	TypeAccess  Type = "access_token"
	TypeRefresh Type = "refresh_token"
)

// Claims is the token payload asserted about its holder.
type Claims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      auth.Role `json:"role,omitempty"`
	TokenID   string    `json:"tokenId"`
	TokenType Type      `json:"type"`
}

// Identity converts the claims to the request-level identity.
func (c *Claims) Identity() *auth.Identity {
	id := &auth.Identity{
		ID:      c.UserID,
		Email:   c.Email,
		Name:    c.Name,
		Role:    c.Role,
		TokenID: c.TokenID,
	}
	if id.Role == "" {
		id.Role = auth.RoleUser
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// expiresAt returns the expiry time, or the zero time when absent.
func (c *Claims) expiresAt() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Package middleware contains the request pipeline stages: authentication,
// authorization policies, rate limiting and the usual ambient middleware.
// Stages compose as ordered gin handler chains; each stage can short-circuit
// the request with a terminal error response.
package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/auth/authctx"
	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/auth/token"
	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/store"
)

// AuthOptions configures one mounting of the authentication middleware.
type AuthOptions struct {
	// Required rejects requests without a token. When false, a missing
	// or unverifiable token passes through with no identity attached.
	Required bool

	// CheckStore re-validates that the token subject still exists and
	// is active in the user store. Absence is a hard failure even when
	// authentication is optional.
	CheckStore bool

	// AllowedRoles, when non-empty, restricts access to those roles.
	AllowedRoles []auth.Role

	// ExpiryWarning, when positive, sets warning headers on responses
	// once the token's remaining validity drops below it.
	ExpiryWarning time.Duration
}

// Authenticator builds authentication middleware from its collaborators.
// The revocation store is consulted before signature verification so a
// revoked token is rejected however valid its signature is.
type Authenticator struct {
	tokens  *token.Service
	revoked revocation.Store
	users   store.Store
	log     *logger.Logger
}

// NewAuthenticator wires the authentication dependencies.
func NewAuthenticator(tokens *token.Service, revoked revocation.Store, users store.Store, log *logger.Logger) *Authenticator {
	return &Authenticator{
		tokens:  tokens,
		revoked: revoked,
		users:   users,
		log:     log.WithComponent("auth"),
	}
}

// Required returns middleware that rejects unauthenticated requests.
func (a *Authenticator) Required() gin.HandlerFunc {
	return a.Middleware(AuthOptions{Required: true})
}

// Optional returns middleware that attaches an identity when a valid token
// is present and passes through otherwise.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return a.Middleware(AuthOptions{Required: false})
}

// Strict returns required middleware that also re-validates the subject
// against the user store.
func (a *Authenticator) Strict() gin.HandlerFunc {
	return a.Middleware(AuthOptions{Required: true, CheckStore: true})
}

// Middleware returns the authentication stage for the given options.
func (a *Authenticator) Middleware(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.StripBearer(c.GetHeader("Authorization"))

		// 1. No token: pass through when optional, reject when required.
		if raw == "" {
			if !opts.Required {
				c.Next()
				return
			}
			abortWithError(c, apperrors.NoToken())
			return
		}

		// 2. Revocation beats cryptographic validity, and is terminal
		// even for optional mounts.
		if a.revoked.IsRevoked(raw) {
			abortWithError(c, apperrors.TokenRevoked())
			return
		}

		// 3. Verify signature, issuer, audience and expiry.
		claims, err := a.tokens.Verify(raw)
		if err != nil {
			if !opts.Required {
				c.Next()
				return
			}
			abortWithError(c, mapVerifyError(err))
			return
		}

		// 4. Optionally confirm the subject still exists and is active.
		if opts.CheckStore {
			u, err := a.users.FindByID(c.Request.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					abortWithError(c, apperrors.Unauthorized(apperrors.CodeUserNotFound,
						"User not found", "User associated with this token no longer exists"))
					return
				}
				a.log.Error("Store lookup failed during authentication", map[string]interface{}{
					logger.FieldUserID: claims.UserID,
					logger.FieldError:  err.Error(),
				})
				abortWithError(c, apperrors.AuthServiceError(err))
				return
			}
			if !u.IsActive {
				abortWithError(c, apperrors.Unauthorized(apperrors.CodeAccountDisabled,
					"Account disabled", "This account has been disabled"))
				return
			}
		}

		identity := claims.Identity()

		// 5. Role allow-list.
		if len(opts.AllowedRoles) > 0 && !identity.Role.In(opts.AllowedRoles...) {
			abortWithError(c, apperrors.InsufficientPermissions(roleNames(opts.AllowedRoles)...))
			return
		}

		// 6. Attach identity and the raw token for downstream consumers.
		ctx := authctx.Set(c.Request.Context(), identity)
		ctx = authctx.SetRawToken(ctx, raw)
		c.Request = c.Request.WithContext(ctx)

		if opts.ExpiryWarning > 0 {
			if remaining := time.Until(identity.ExpiresAt); remaining > 0 && remaining <= opts.ExpiryWarning {
				c.Header("X-Token-Warning", "Token expires soon")
				c.Header("X-Token-Expires-In", fmt.Sprintf("%d", int(remaining.Seconds())))
			}
		}

		a.log.Debug("Authenticated access", map[string]interface{}{
			logger.FieldEmail:   identity.Email,
			logger.FieldTokenID: identity.TokenID,
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
		})

		c.Next()
	}
}

// mapVerifyError converts codec failures to response errors.
func mapVerifyError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, token.ErrMissingToken):
		return apperrors.NoToken()
	case errors.Is(err, token.ErrExpired):
		return apperrors.TokenExpired()
	case errors.Is(err, token.ErrNotYetValid):
		return apperrors.Unauthorized(apperrors.CodeTokenNotYetValid,
			"Authentication failed", "Token is not yet valid")
	case errors.Is(err, token.ErrWrongIssuerAudience),
		errors.Is(err, token.ErrInvalidSignature),
		errors.Is(err, token.ErrMalformed):
		return apperrors.InvalidToken()
	default:
		return apperrors.InvalidToken()
	}
}

func roleNames(roles []auth.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

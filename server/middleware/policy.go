package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/auth/authctx"
	apperrors "github.com/connexa-app/connexa/errors"
)

// Authorization policies: predicates over the authenticated identity,
// mounted strictly after the authentication stage. Each returns 401
// AUTH_REQUIRED when it runs without an identity, which indicates a
// mis-ordered pipeline rather than a client mistake.

// RequireRole returns a stage that passes only identities whose role is
// in the given set.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortWithError(c, apperrors.Unauthorized(apperrors.CodeAuthRequired,
				"Authentication required", "Please login to access this resource"))
			return
		}
		if !identity.Role.In(roles...) {
			abortWithError(c, apperrors.InsufficientPermissions(roleNames(roles)...))
			return
		}
		c.Next()
	}
}

// RequireOwnership returns a stage that passes when the resource id named
// by param (path parameter first, then a top-level JSON body field) equals
// the identity's id, or when the identity's role is in the override set.
// A missing parameter is a client error, not a permission failure.
func RequireOwnership(param string, overrides ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortWithError(c, apperrors.Unauthorized(apperrors.CodeAuthRequired,
				"Authentication required", "Please login to access this resource"))
			return
		}

		raw := c.Param(param)
		if raw == "" {
			raw = bodyParam(c, param)
		}
		if raw == "" {
			abortWithError(c, apperrors.MissingParam(param))
			return
		}

		if identity.Role.In(overrides...) {
			c.Next()
			return
		}

		resourceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, apperrors.MissingParam(param))
			return
		}
		if identity.ID != resourceID {
			abortWithError(c, apperrors.Forbidden(apperrors.CodeAccessForbidden,
				"You can only access your own resources"))
			return
		}
		c.Next()
	}
}

// bodyParam extracts a top-level field from a JSON request body, restoring
// the body so the handler can still bind it. String and integer values are
// accepted; anything else reads as absent.
func bodyParam(c *gin.Context, param string) string {
	if c.Request.Body == nil {
		return ""
	}
	buf, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil || len(buf) == 0 {
		return ""
	}
	var body map[string]json.RawMessage
	if json.Unmarshal(buf, &body) != nil {
		return ""
	}
	field, ok := body[param]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(field, &s) == nil {
		return s
	}
	var n int64
	if json.Unmarshal(field, &n) == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

// OwnershipCheck configures the ownership stage of a composite policy.
type OwnershipCheck struct {
	// Param names the request parameter holding the resource's user id.
	Param string
	// Overrides are roles that bypass the ownership comparison.
	Overrides []auth.Role
}

// PolicyConfig declares an endpoint policy without writing new middleware:
// an optional role filter, an optional ownership check, optional identity
// re-validation against the store, and whether authentication itself is
// optional.
type PolicyConfig struct {
	Roles      []auth.Role
	Ownership  *OwnershipCheck
	CheckStore bool
	Optional   bool
}

// DefaultExpiryWarning is the remaining validity below which
// policy-authenticated responses carry the renewal warning headers.
const DefaultExpiryWarning = 5 * time.Minute

// Policy builds the ordered stage pipeline for a declarative policy.
// Authentication always runs first.
func (a *Authenticator) Policy(cfg PolicyConfig) []gin.HandlerFunc {
	stages := []gin.HandlerFunc{
		a.Middleware(AuthOptions{
			Required:      !cfg.Optional,
			CheckStore:    cfg.CheckStore,
			ExpiryWarning: DefaultExpiryWarning,
		}),
	}
	if len(cfg.Roles) > 0 {
		stages = append(stages, RequireRole(cfg.Roles...))
	}
	if cfg.Ownership != nil {
		stages = append(stages, RequireOwnership(cfg.Ownership.Param, cfg.Ownership.Overrides...))
	}
	return stages
}

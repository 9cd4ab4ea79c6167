// Package api implements the HTTP handlers and route table: registration,
// login, profile management, session lifecycle and the admin surface.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth/password"
	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/auth/token"
	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/store"
)

// API bundles the handler dependencies. All collaborators are injected;
// the package holds no globals.
type API struct {
	users   store.Store
	hasher  password.Hasher
	tokens  *token.Service
	revoked revocation.Store
	log     *logger.Logger
}

// New wires the handler dependencies.
func New(users store.Store, hasher password.Hasher, tokens *token.Service, revoked revocation.Store, log *logger.Logger) *API {
	return &API{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		log:     log.WithComponent("api"),
	}
}

// respondError writes the error envelope. Non-AppError failures become an
// opaque 500 and get logged with their cause.
func (a *API) respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= 500 {
		fields := map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}
		if appErr.Cause != nil {
			fields[logger.FieldError] = appErr.Cause.Error()
		}
		a.log.Error("Request failed", fields)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/errors"
)

// abortWithError terminates the request with the AppError's status and
// envelope. Middleware failures are always terminal for the request.
func abortWithError(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}

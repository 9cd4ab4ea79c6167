package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/connexa-app/connexa/logger"
)

// RequestIDHeader carries the correlation id between client, proxies and
// server.
const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with a correlation id. A caller-supplied id
// is honored so the id survives proxy hops; otherwise a fresh UUID is
// generated. The id is echoed in the response and stored on the gin context
// under logger.FieldRequestID, where the request logger picks it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

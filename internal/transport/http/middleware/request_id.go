package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelins/membergate/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation id and echoes it in
// the response. An id supplied by an upstream proxy is kept as-is so
// its logs and ours line up; otherwise a fresh one is minted. Access
// logs and usecase logs pick the id up from the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logger.RequestIDKey{}, id),
		)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "storefront-api/internal/transport/http/response"
)

// Timeout bounds the request context; DB and Keycloak calls inherit it. A
// handler that gave up without writing gets a 504 envelope.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if c.Writer.Written() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			resp.Abort(c, resp.Error(resp.CodeTimeout, "request timed out"))
		}
	}
}

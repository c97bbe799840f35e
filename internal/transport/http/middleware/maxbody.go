package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "storefront-api/internal/transport/http/response"
)

// MaxBodyBytes rejects declared oversize bodies up front and caps streamed
// ones; the JSON binder then reports "request body too large".
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.Error(resp.CodeBadRequest, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-api/internal/core/auth"
	"storefront-api/internal/transport/http/ez"
)

type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
	Roles(c *auth.Claims) []string
}

// Authenticate resolves the caller from a Keycloak bearer token. Requests
// without a valid token pass through anonymously; actions with Auth or Roles
// set reject them later.
func Authenticate(v TokenVerifier, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok {
			c.Next()
			return
		}
		claims, err := v.Parse(raw)
		if err != nil {
			l.Debug("token rejected", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			c.Next()
			return
		}
		c.Set(ez.CtxUserID, claims.Subject)
		c.Set(ez.CtxEmail, claims.Email)
		c.Set(ez.CtxRoles, v.Roles(claims))
		c.Next()
	}
}

package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

// WebSocketAuthMiddleware reads the admin token from ?token= since browsers
// cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware(secret []byte, allow []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = utils.BearerToken(c.GetHeader("Authorization"))
		}

		claims, ok := authorizeAdmin(token, secret, allow)
		if !ok {
			c.AbortWithStatus(401)
			return
		}

		c.Set(ContextAdminEmail, claims.Email)
		c.Set(ContextAdminRole, claims.AppMetadata.Role)
		c.Next()
	}
}

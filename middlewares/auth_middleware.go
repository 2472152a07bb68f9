package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

const (
	ContextAdminEmail = "admin_email"
	ContextAdminRole  = "role"
)

var errUnauthorized = errors.New("Unauthorized")

// authorizeAdmin accepts a token whose role is admin or whose email is allow-listed.
func authorizeAdmin(token string, secret []byte, allow []string) (*utils.AdminClaims, bool) {
	if token == "" || len(secret) == 0 {
		return nil, false
	}
	claims, err := utils.ParseAdminToken(token, secret)
	if err != nil {
		return nil, false
	}
	if claims.AppMetadata.Role != utils.RoleAdmin && !utils.IsAllowlisted(claims.Email, allow) {
		return nil, false
	}
	return claims, true
}

func AdminAuthMiddleware(secret []byte, allow []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.BearerToken(c.GetHeader("Authorization"))
		claims, ok := authorizeAdmin(token, secret, allow)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextAdminEmail, claims.Email)
		c.Set(ContextAdminRole, claims.AppMetadata.Role)
		c.Next()
	}
}

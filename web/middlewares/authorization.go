package middlewares

import (
	"net/http"

	"axiapac.com/personnel/security"
	"axiapac.com/personnel/web/common"
	"github.com/gin-gonic/gin"
)

// RequirePermission rejects callers whose effective permissions lack perm.
func RequirePermission(perm security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := common.CurrentPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(notAuthenticated))
			return
		}
		if !security.Allowed(principal, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("Bu işlem için yetkiniz yok"))
			return
		}
		c.Next()
	}
}

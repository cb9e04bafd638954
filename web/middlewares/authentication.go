package middlewares

import (
	"net/http"
	"strings"

	"axiapac.com/personnel/infrastructure/logging"
	"axiapac.com/personnel/security"
	"axiapac.com/personnel/web/common"
	"github.com/gin-gonic/gin"
)

const SessionCookie = "personnel.session"

const notAuthenticated = "Kimlik doğrulanmadı"

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// browsers fall back to the session cookie
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			return "", false
		}
		return cookie, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authentication resolves the bearer credential into a principal.
func Authentication(verifier *security.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(notAuthenticated))
			return
		}

		principal, err := verifier.Verify(tokenStr)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(notAuthenticated))
			return
		}

		common.SetPrincipal(c, principal)
		c.Set(logging.SubjectKey, principal.Subject)
		c.Next()
	}
}

package common

import (
	"axiapac.com/personnel/security"
	"github.com/gin-gonic/gin"
)

const PrincipalKey = "principal"

func SetPrincipal(c *gin.Context, p *security.Principal) {
	c.Set(PrincipalKey, p)
}

// CurrentPrincipal returns the caller resolved by the authentication
// middleware, or nil on public routes.
func CurrentPrincipal(c *gin.Context) *security.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*security.Principal)
	return p
}

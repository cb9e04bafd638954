package common

import (
	"strconv"

	"axiapac.com/personnel/core"
	"github.com/gin-gonic/gin"
)

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, core.Validation(name, "Geçersiz kimlik")
	}
	return uint(id), nil
}

// QueryUint reads an optional positive numeric query parameter.
func QueryUint(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, core.Validation(name, "Geçersiz sayı")
	}
	id := uint(v)
	return &id, nil
}

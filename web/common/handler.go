package common

import (
	"axiapac.com/personnel/core"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Dm *core.DatabaseManager
}

// Exec runs fn against a session bound to the request context.
func (h *Handler) Exec(c *gin.Context, fn func(db *gorm.DB) error) error {
	return h.Dm.Exec(c.Request.Context(), fn)
}

func (h *Handler) Transaction(c *gin.Context, fn func(tx *gorm.DB) error) error {
	return h.Dm.Transaction(c.Request.Context(), fn)
}

package notification

import (
	"net/http"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/notify"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base        web.Handler
	broadcaster *notify.Broadcaster
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, broadcaster *notify.Broadcaster) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, broadcaster: broadcaster}
	read := middlewares.RequirePermission(security.NotificationsRead)

	r.POST("/notifications", middlewares.RequirePermission(security.NotificationsSend), endpoint.Create)
	r.GET("/notifications", read, endpoint.List)
	r.POST("/notifications/:id/read", read, endpoint.MarkRead)
}

type CreateDTO struct {
	Title      string                 `json:"title" binding:"required,max=160"`
	Message    string                 `json:"message" binding:"required"`
	Type       model.NotificationType `json:"type" binding:"omitempty,oneof=info warning error success"`
	TargetType model.TargetType       `json:"targetType" binding:"required,oneof=all branch individual team"`
	TargetID   *uint                  `json:"targetId"`
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	var notification *model.Notification
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		notification, err = ep.broadcaster.Broadcast(db, notify.BroadcastRequest{
			Title:      dto.Title,
			Message:    dto.Message,
			Type:       dto.Type,
			TargetType: dto.TargetType,
			TargetID:   dto.TargetID,
			CreatedBy:  web.CurrentPrincipal(c).Subject,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(notification))
}

// List returns the caller's notifications; ?unread=true limits to unread ones.
func (ep *Endpoint) List(c *gin.Context) {
	principal := web.CurrentPrincipal(c)
	if principal.PersonnelID == nil {
		c.JSON(http.StatusOK, web.NewSearchResponse([]model.NotificationReceipt{}, 0))
		return
	}

	var receipts []model.NotificationReceipt
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		receipts, err = ep.broadcaster.List(db, *principal.PersonnelID, c.Query("unread") == "true")
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(receipts, int64(len(receipts))))
}

func (ep *Endpoint) MarkRead(c *gin.Context) {
	id, err := web.ParseID(c, "id")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	principal := web.CurrentPrincipal(c)
	if principal.PersonnelID == nil {
		web.WriteError(c, core.NotFound("Bildirim bulunamadı"))
		return
	}

	var receipt *model.NotificationReceipt
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		receipt, err = ep.broadcaster.MarkRead(db, id, *principal.PersonnelID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(receipt))
}

package screen

import (
	"fmt"
	"net/http"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/infrastructure/communication"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/qr"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base     web.Handler
	registry *qr.Registry
	alerter  communication.Alerter
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, registry *qr.Registry, alerter communication.Alerter) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, registry: registry, alerter: alerter}
	view := middlewares.RequirePermission(security.QRView)
	manage := middlewares.RequirePermission(security.ScreensManage)

	r.GET("/qr-screens", view, endpoint.List)
	r.POST("/qr-screens", manage, endpoint.Create)
	r.GET("/qr-screens/:screenId", view, endpoint.Get)
	r.PUT("/qr-screens/:screenId", manage, endpoint.Update)
	r.DELETE("/qr-screens/:screenId", manage, endpoint.Delete)
	r.POST("/qr-screens/:screenId/access-code", manage, endpoint.RegenerateAccessCode)
	r.POST("/qr-screens/:screenId/unbind", manage, endpoint.Unbind)
}

type CreateDTO struct {
	ScreenID   string `json:"screenId" binding:"required,screenid"`
	BranchID   uint   `json:"branchId" binding:"required"`
	Name       string `json:"name" binding:"max=120"`
	AccessCode string `json:"accessCode" binding:"omitempty,accesscode"`
	Active     *bool  `json:"active"`
}

type UpdateDTO struct {
	Name       *string              `json:"name" binding:"omitempty,max=120"`
	AccessCode *string              `json:"accessCode" binding:"omitempty,accesscode"`
	Active     *bool                `json:"active"`
	DeviceID   web.Nullable[string] `json:"deviceId"`
}

func (ep *Endpoint) List(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var screens []model.QRScreen
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		screens, err = ep.registry.List(db, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(screens, int64(len(screens))))
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	var screen *model.QRScreen
	err := ep.base.Transaction(c, func(tx *gorm.DB) error {
		var err error
		screen, err = ep.registry.Create(tx, qr.CreateScreenRequest{
			ScreenID:   dto.ScreenID,
			BranchID:   dto.BranchID,
			Name:       dto.Name,
			AccessCode: dto.AccessCode,
			Active:     active,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(screen))
}

func (ep *Endpoint) Get(c *gin.Context) {
	ep.respond(c, func(db *gorm.DB, screenID string) (*model.QRScreen, error) {
		return ep.registry.Get(db, screenID)
	})
}

func (ep *Endpoint) Update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	ep.respond(c, func(db *gorm.DB, screenID string) (*model.QRScreen, error) {
		return ep.registry.Update(db, screenID, qr.ScreenUpdate{
			Name:        dto.Name,
			AccessCode:  dto.AccessCode,
			Active:      dto.Active,
			SetDeviceID: dto.DeviceID.Set,
			DeviceID:    dto.DeviceID.Value,
		})
	})
}

func (ep *Endpoint) RegenerateAccessCode(c *gin.Context) {
	ep.respond(c, func(db *gorm.DB, screenID string) (*model.QRScreen, error) {
		return ep.registry.RegenerateAccessCode(db, screenID)
	})
}

func (ep *Endpoint) Unbind(c *gin.Context) {
	ep.respond(c, func(db *gorm.DB, screenID string) (*model.QRScreen, error) {
		return ep.registry.Unbind(db, screenID)
	})
}

func (ep *Endpoint) Delete(c *gin.Context) {
	screenID := c.Param("screenId")
	err := ep.base.Transaction(c, func(tx *gorm.DB) error {
		return ep.registry.Delete(tx, screenID)
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	subject := ""
	if p := web.CurrentPrincipal(c); p != nil {
		subject = p.Subject
	}
	_ = ep.alerter.Info(c.Request.Context(), fmt.Sprintf("%s, %s QR ekranını sildi", subject, screenID))

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}

func (ep *Endpoint) respond(c *gin.Context, fn func(db *gorm.DB, screenID string) (*model.QRScreen, error)) {
	screenID := c.Param("screenId")

	var screen *model.QRScreen
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		screen, err = fn(db, screenID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(screen))
}

package qrcode

import (
	"fmt"
	"net/http"
	"time"

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
	base       web.Handler
	issuer     *qr.Issuer
	defaultTTL time.Duration
	alerter    communication.Alerter
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, issuer *qr.Issuer, defaultTTL time.Duration, alerter communication.Alerter) {
	endpoint := &Endpoint{
		base:       web.Handler{Dm: dm},
		issuer:     issuer,
		defaultTTL: defaultTTL,
		alerter:    alerter,
	}
	view := middlewares.RequirePermission(security.QRView)
	manage := middlewares.RequirePermission(security.QRManage)

	r.POST("/qr-codes", manage, endpoint.Create)
	r.GET("/qr-codes", view, endpoint.ListActive)
	r.DELETE("/qr-codes", manage, endpoint.InvalidateAll)
	r.GET("/qr-codes/screen/:screenId", view, endpoint.CurrentForScreen)
}

type CreateDTO struct {
	BranchID      uint    `json:"branchId"`
	ScreenID      *string `json:"screenId" binding:"omitempty,screenid"`
	ExpiryMinutes *int    `json:"expiryMinutes" binding:"omitempty,min=1,max=1440"`
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	ttl := ep.defaultTTL
	if dto.ExpiryMinutes != nil {
		ttl = time.Duration(*dto.ExpiryMinutes) * time.Minute
	}

	var token *model.QRToken
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		token, err = ep.issuer.Issue(db, qr.IssueRequest{
			BranchID: dto.BranchID,
			ScreenID: dto.ScreenID,
			TTL:      ttl,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(token))
}

func (ep *Endpoint) ListActive(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var tokens []model.QRToken
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		tokens, err = ep.issuer.ListActive(db, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(tokens, int64(len(tokens))))
}

// InvalidateAll deactivates every live token, or one branch's with ?branchId=.
func (ep *Endpoint) InvalidateAll(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var affected int64
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		affected, err = ep.issuer.InvalidateAll(db, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	scope := "tüm şubeler"
	if branchID != nil {
		scope = fmt.Sprintf("şube %d", *branchID)
	}
	subject := ""
	if p := web.CurrentPrincipal(c); p != nil {
		subject = p.Subject
	}
	_ = ep.alerter.Info(c.Request.Context(),
		fmt.Sprintf("%s, %s için %d QR kodu geçersiz kıldı", subject, scope, affected))

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"invalidated": affected}))
}

// CurrentForScreen returns the screen's live token, or null when it has none.
func (ep *Endpoint) CurrentForScreen(c *gin.Context) {
	screenID := c.Param("screenId")

	var token *model.QRToken
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		token, err = ep.issuer.CurrentForScreen(db, screenID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(token))
}

// Package display serves the unauthenticated kiosk API. A device proves it
// may show a screen's tokens by presenting the device id it paired with.
package display

import (
	"net/http"
	"strconv"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/qr"
	web "axiapac.com/personnel/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base    web.Handler
	pairing *qr.Pairing
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, pairing *qr.Pairing) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, pairing: pairing}
	r.POST("/qr-display/:screenId/pair", endpoint.Pair)
	r.GET("/qr-display/:screenId/status", endpoint.Status)
	r.GET("/qr-display/:screenId/token", endpoint.Token)
	r.GET("/qr-display/:screenId/token.png", endpoint.TokenImage)
}

type PairDTO struct {
	AccessCode string `json:"accessCode" binding:"required"`
	DeviceID   string `json:"deviceId" binding:"required,max=64"`
}

type TokenDTO struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (ep *Endpoint) Pair(c *gin.Context) {
	var dto PairDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	var result *qr.PairingResult
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		result, err = ep.pairing.Pair(db, c.Param("screenId"), dto.AccessCode, dto.DeviceID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(result))
}

func (ep *Endpoint) Status(c *gin.Context) {
	var status *qr.Status
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		status, err = ep.pairing.Status(db, c.Param("screenId"), c.Query("deviceId"))
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(status))
}

func (ep *Endpoint) current(c *gin.Context) (*model.QRToken, error) {
	var token *model.QRToken
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		token, err = ep.pairing.DisplayToken(db, c.Param("screenId"), c.Query("deviceId"))
		return err
	})
	return token, err
}

func (ep *Endpoint) Token(c *gin.Context) {
	token, err := ep.current(c)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, web.NewSuccessResponse(TokenDTO{Code: token.Code, ExpiresAt: token.ExpiresAt}))
}

// TokenImage renders the current token as a PNG; ?size= sets the edge in pixels.
func (ep *Endpoint) TokenImage(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 64 || v > 2048 {
			web.WriteError(c, core.Validation("size", "Boyut 64 ile 2048 arasında olmalı"))
			return
		}
		size = v
	}

	token, err := ep.current(c)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	png, err := qr.EncodePNG(token.Code, size)
	if err != nil {
		web.WriteError(c, core.Internal(err))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

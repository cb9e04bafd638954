// Package preference stores per-user UI settings such as menu order and
// sidebar state as opaque JSON values.
package preference

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/security"
	"axiapac.com/personnel/utils"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxValueSize = 64 << 10

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,80}$`)

type Endpoint struct {
	base  web.Handler
	clock utils.Clock
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, clock utils.Clock) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, clock: clock}
	edit := middlewares.RequirePermission(security.PreferencesEdit)

	r.GET("/preferences", edit, endpoint.List)
	r.GET("/preferences/:key", edit, endpoint.Get)
	r.PUT("/preferences/:key", edit, endpoint.Put)
}

func parseKey(c *gin.Context) (string, error) {
	k := c.Param("key")
	if !keyPattern.MatchString(k) {
		return "", core.Validation("key", "Geçersiz tercih anahtarı")
	}
	return k, nil
}

func (ep *Endpoint) List(c *gin.Context) {
	subject := web.CurrentPrincipal(c).Subject

	var prefs []model.Preference
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		return db.Where("subject = ?", subject).Order("pref_key").Find(&prefs).Error
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(prefs, int64(len(prefs))))
}

func (ep *Endpoint) Get(c *gin.Context) {
	k, err := parseKey(c)
	if err != nil {
		web.WriteError(c, err)
		return
	}
	subject := web.CurrentPrincipal(c).Subject

	var pref model.Preference
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		err := db.Where("subject = ? AND pref_key = ?", subject, k).Take(&pref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.NotFound("Tercih bulunamadı")
		}
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(pref))
}

// Put replaces the value stored under key with the raw JSON request body.
func (ep *Endpoint) Put(c *gin.Context) {
	k, err := parseKey(c)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxValueSize+1))
	if err != nil {
		web.WriteError(c, core.Internal(err))
		return
	}
	if len(body) > maxValueSize {
		web.WriteError(c, core.Validation("value", "Tercih değeri çok büyük"))
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		web.WriteError(c, core.Validation("value", "Tercih değeri geçerli bir JSON olmalı"))
		return
	}

	pref := model.Preference{
		Subject:   web.CurrentPrincipal(c).Subject,
		Key:       k,
		Value:     datatypes.JSON(body),
		UpdatedAt: ep.clock.Now(),
	}
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}, {Name: "pref_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&pref).Error
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(pref))
}

package dashboard

import (
	"net/http"
	"strconv"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/dashboard"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultTrendDays = 7

type Endpoint struct {
	base       web.Handler
	aggregator *dashboard.Aggregator
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, aggregator *dashboard.Aggregator) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, aggregator: aggregator}
	view := middlewares.RequirePermission(security.DashboardView)

	r.GET("/dashboard/summary", view, endpoint.Summary)
	r.GET("/dashboard/attendance-trend", view, endpoint.Trend)
}

func (ep *Endpoint) Summary(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var summary *dashboard.Summary
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		summary, err = ep.aggregator.Summary(db, c.Query("date"), branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(summary))
}

func (ep *Endpoint) Trend(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			web.WriteError(c, core.Validation("days", "Gün sayısı sayı olmalı"))
			return
		}
	}

	var points []dashboard.TrendPoint
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		points, err = ep.aggregator.Trend(db, days, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(points))
}

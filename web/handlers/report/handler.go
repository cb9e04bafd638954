package report

import (
	"fmt"
	"net/http"

	"axiapac.com/personnel/attendance"
	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/report"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base     web.Handler
	recorder *attendance.Recorder
	archiver *report.Archiver
}

// Register mounts the report routes. archiver may be nil when no bucket is
// configured; archiving then fails with a downstream error.
func Register(r *gin.RouterGroup, dm *core.DatabaseManager, recorder *attendance.Recorder, archiver *report.Archiver) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, recorder: recorder, archiver: archiver}
	export := middlewares.RequirePermission(security.ReportsExport)

	r.GET("/reports/attendance", export, endpoint.Download)
	r.POST("/reports/attendance/archive", export, endpoint.Archive)
}

type RangeDTO struct {
	From     string `json:"from" form:"from" binding:"required,datetime=2006-01-02"`
	To       string `json:"to" form:"to" binding:"required,datetime=2006-01-02"`
	BranchID *uint  `json:"branchId" form:"branchId"`
}

func (ep *Endpoint) records(c *gin.Context, rng RangeDTO) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		records, err = ep.recorder.List(db, attendance.ListFilter{From: rng.From, To: rng.To, BranchID: rng.BranchID})
		return err
	})
	return records, err
}

// Download streams the attendance workbook for [from, to].
func (ep *Endpoint) Download(c *gin.Context) {
	var rng RangeDTO
	if err := c.ShouldBindQuery(&rng); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	records, err := ep.records(c, rng)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.Header("Content-Type", report.ContentTypeXLSX)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.AttendanceFilename(rng.From, rng.To)))
	c.Status(http.StatusOK)
	if err := report.WriteAttendance(c.Writer, records, ep.recorder.Rules.Location); err != nil {
		_ = c.Error(err)
	}
}

func (ep *Endpoint) Archive(c *gin.Context) {
	var rng RangeDTO
	if err := c.ShouldBindJSON(&rng); err != nil {
		web.WriteBindingError(c, err)
		return
	}
	if ep.archiver == nil {
		web.WriteError(c, core.Downstream("Rapor arşivi yapılandırılmamış", nil))
		return
	}

	records, err := ep.records(c, rng)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	key, err := ep.archiver.Archive(c.Request.Context(), records, rng.From, rng.To)
	if err != nil {
		web.WriteError(c, core.Downstream("Rapor arşive yüklenemedi", err))
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(gin.H{"key": key, "records": len(records)}))
}

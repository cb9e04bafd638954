package attendance

import (
	"net/http"

	"axiapac.com/personnel/attendance"
	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base     web.Handler
	recorder *attendance.Recorder
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, recorder *attendance.Recorder) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, recorder: recorder}
	view := middlewares.RequirePermission(security.AttendanceView)

	r.POST("/attendance/scan", middlewares.RequirePermission(security.AttendanceRecord), endpoint.Scan)
	r.GET("/attendance/today", view, endpoint.Today)
	r.GET("/attendance", view, endpoint.List)
}

type ScanDTO struct {
	Code        string `json:"code" binding:"required"`
	PersonnelID *uint  `json:"personnelId"`
	Location    string `json:"location" binding:"max=255"`
	Notes       string `json:"notes" binding:"max=500"`
}

// scanSubject picks whose attendance a scan records. Callers record for
// themselves; naming someone else requires personnel.manage.
func scanSubject(p *security.Principal, requested *uint) (uint, error) {
	if requested != nil && (p.PersonnelID == nil || *requested != *p.PersonnelID) {
		if !security.Allowed(p, security.PersonnelManage) {
			return 0, core.Forbidden("Başka bir personel adına kayıt yapamazsınız")
		}
		return *requested, nil
	}
	if p.PersonnelID == nil {
		return 0, core.Validation("personnelId", "Personel belirtilmedi")
	}
	return *p.PersonnelID, nil
}

func (ep *Endpoint) Scan(c *gin.Context) {
	var dto ScanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	personnelID, err := scanSubject(web.CurrentPrincipal(c), dto.PersonnelID)
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var result *attendance.ScanResult
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		result, err = ep.recorder.RecordScan(db, attendance.ScanRequest{
			Code:        dto.Code,
			PersonnelID: personnelID,
			Location:    dto.Location,
			Notes:       dto.Notes,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	status := http.StatusOK
	if result.Action == attendance.ActionCheckIn {
		status = http.StatusCreated
	}
	c.JSON(status, web.NewSuccessResponse(result))
}

func (ep *Endpoint) Today(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var records []model.AttendanceRecord
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		records, err = ep.recorder.Today(db, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(records, int64(len(records))))
}

type ListQuery struct {
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	PersonnelID *uint  `form:"personnelId"`
	BranchID    *uint  `form:"branchId"`
}

func (ep *Endpoint) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	var records []model.AttendanceRecord
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		records, err = ep.recorder.List(db, attendance.ListFilter{
			From:        query.From,
			To:          query.To,
			PersonnelID: query.PersonnelID,
			BranchID:    query.BranchID,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(records, int64(len(records))))
}

package sms

import (
	"net/http"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/notify"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base    web.Handler
	service *notify.SMSService
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, service *notify.SMSService) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, service: service}
	send := middlewares.RequirePermission(security.SMSSend)

	r.POST("/sms/send-bulk", send, endpoint.SendBulk)
	r.POST("/sms/send-filtered", send, endpoint.SendFiltered)
}

type BulkDTO struct {
	PhoneNumbers []string `json:"phoneNumbers" binding:"required,min=1"`
	Message      string   `json:"message" binding:"required,max=918"` // six concatenated GSM segments
}

type FilteredDTO struct {
	BranchID     *uint  `json:"branchId"`
	DepartmentID *uint  `json:"departmentId"`
	TeamID       *uint  `json:"teamId"`
	Message      string `json:"message" binding:"required,max=918"`
}

func (ep *Endpoint) SendBulk(c *gin.Context) {
	var dto BulkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	ep.send(c, func(db *gorm.DB, sentBy string) (*notify.Summary, error) {
		return ep.service.SendBulk(c.Request.Context(), db, dto.PhoneNumbers, dto.Message, sentBy)
	})
}

func (ep *Endpoint) SendFiltered(c *gin.Context) {
	var dto FilteredDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	filter := notify.RecipientFilter{
		BranchID:     dto.BranchID,
		DepartmentID: dto.DepartmentID,
		TeamID:       dto.TeamID,
	}
	ep.send(c, func(db *gorm.DB, sentBy string) (*notify.Summary, error) {
		return ep.service.SendFiltered(c.Request.Context(), db, filter, dto.Message, sentBy)
	})
}

func (ep *Endpoint) send(c *gin.Context, fn func(db *gorm.DB, sentBy string) (*notify.Summary, error)) {
	sentBy := web.CurrentPrincipal(c).Subject

	var summary *notify.Summary
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		summary, err = fn(db, sentBy)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(summary))
}

package leave

import (
	"net/http"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/leave"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Endpoint struct {
	base     web.Handler
	workflow *leave.Workflow
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, workflow *leave.Workflow) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}, workflow: workflow}
	request := middlewares.RequirePermission(security.LeaveRequest)
	approve := middlewares.RequirePermission(security.LeaveApprove)

	r.POST("/leave-requests", request, endpoint.Create)
	r.GET("/leave-requests", request, endpoint.List)
	r.GET("/leave-requests/:id", request, endpoint.Get)
	r.POST("/leave-requests/:id/approve", approve, endpoint.Approve)
	r.POST("/leave-requests/:id/reject", approve, endpoint.Reject)
}

type CreateDTO struct {
	PersonnelID *uint           `json:"personnelId"`
	Type        model.LeaveType `json:"type" binding:"required"`
	StartDate   *web.DateOnly   `json:"startDate" binding:"required"`
	EndDate     *web.DateOnly   `json:"endDate" binding:"required"`
	Reason      string          `json:"reason" binding:"max=500"`
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func decider(p *security.Principal) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Subject
}

// ownOnly reports whether the caller may only see their own requests.
func ownOnly(p *security.Principal) bool {
	return !security.Allowed(p, security.LeaveApprove)
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	principal := web.CurrentPrincipal(c)
	personnelID := principal.PersonnelID
	if dto.PersonnelID != nil && (personnelID == nil || *dto.PersonnelID != *personnelID) {
		if ownOnly(principal) {
			web.WriteError(c, core.Forbidden("Başka bir personel adına izin talebi oluşturamazsınız"))
			return
		}
		personnelID = dto.PersonnelID
	}
	if personnelID == nil {
		web.WriteError(c, core.Validation("personnelId", "Personel belirtilmedi"))
		return
	}

	var request *model.LeaveRequest
	err := ep.base.Transaction(c, func(tx *gorm.DB) error {
		var err error
		request, err = ep.workflow.Create(tx, leave.CreateRequest{
			PersonnelID: *personnelID,
			Type:        dto.Type,
			StartDate:   dto.StartDate.String(),
			EndDate:     dto.EndDate.String(),
			Reason:      dto.Reason,
		})
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(request))
}

type ListQuery struct {
	Status      *model.LeaveStatus `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	PersonnelID *uint              `form:"personnelId"`
}

func (ep *Endpoint) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	principal := web.CurrentPrincipal(c)
	filter := leave.ListFilter{Status: query.Status, PersonnelID: query.PersonnelID}
	if ownOnly(principal) {
		if principal.PersonnelID == nil {
			c.JSON(http.StatusOK, web.NewSearchResponse([]model.LeaveRequest{}, 0))
			return
		}
		filter.PersonnelID = principal.PersonnelID
	}

	var requests []model.LeaveRequest
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		requests, err = ep.workflow.List(db, filter)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(requests, int64(len(requests))))
}

func (ep *Endpoint) Get(c *gin.Context) {
	id, err := web.ParseID(c, "id")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var request *model.LeaveRequest
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		request, err = ep.workflow.Get(db, id)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	principal := web.CurrentPrincipal(c)
	if ownOnly(principal) && (principal.PersonnelID == nil || *principal.PersonnelID != request.PersonnelID) {
		web.WriteError(c, core.NotFound("İzin talebi bulunamadı"))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

func (ep *Endpoint) Approve(c *gin.Context) {
	id, err := web.ParseID(c, "id")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var request *model.LeaveRequest
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		request, err = ep.workflow.Approve(c.Request.Context(), db, id, decider(web.CurrentPrincipal(c)))
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

func (ep *Endpoint) Reject(c *gin.Context) {
	id, err := web.ParseID(c, "id")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var dto RejectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	var request *model.LeaveRequest
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		request, err = ep.workflow.Reject(c.Request.Context(), db, id, decider(web.CurrentPrincipal(c)), dto.Reason)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

package personnel

import (
	"net/http"
	"strconv"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/personnel"
	"axiapac.com/personnel/security"
	web "axiapac.com/personnel/web/common"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxImportSize = 5 << 20

type Endpoint struct {
	base web.Handler
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &Endpoint{base: web.Handler{Dm: dm}}
	view := middlewares.RequirePermission(security.PersonnelView)

	r.GET("/personnel", view, endpoint.Search)
	r.GET("/personnel/:id", view, endpoint.Get)
	r.POST("/personnel/import", middlewares.RequirePermission(security.PersonnelManage), endpoint.Import)
	r.GET("/branches", view, endpoint.Branches)
	r.GET("/departments", view, endpoint.Departments)
	r.GET("/teams", view, endpoint.Teams)
}

type SearchQuery struct {
	BranchID     *uint  `form:"branchId"`
	DepartmentID *uint  `form:"departmentId"`
	TeamID       *uint  `form:"teamId"`
	Active       *bool  `form:"active"`
	Search       string `form:"search"`
}

func (ep *Endpoint) Search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		web.WriteBindingError(c, err)
		return
	}

	// get limit, offset from query params
	limit := personnel.DefaultPageSize
	offset := 0
	if val, err := strconv.Atoi(c.Query("limit")); err == nil && val > 0 {
		limit = val
	}
	if val, err := strconv.Atoi(c.Query("offset")); err == nil && val > 0 {
		offset = val
	}

	var people []model.Personnel
	var total int64
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		people, total, err = personnel.List(db, personnel.Filter{
			BranchID:     query.BranchID,
			DepartmentID: query.DepartmentID,
			TeamID:       query.TeamID,
			Active:       query.Active,
			Search:       query.Search,
		}, limit, offset)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(people, total).Page(limit, offset))
}

func (ep *Endpoint) Get(c *gin.Context) {
	id, err := web.ParseID(c, "id")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var p *model.Personnel
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		p, err = personnel.Get(db, id)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(p))
}

// Import accepts a roster CSV as multipart field "file".
func (ep *Endpoint) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		web.WriteError(c, core.Validation("file", "CSV dosyası zorunludur"))
		return
	}
	if header.Size > maxImportSize {
		web.WriteError(c, core.Validation("file", "Dosya en fazla 5 MB olabilir"))
		return
	}

	file, err := header.Open()
	if err != nil {
		web.WriteError(c, core.Internal(err))
		return
	}
	defer file.Close()

	var result *personnel.ImportResult
	err = ep.base.Transaction(c, func(tx *gorm.DB) error {
		var err error
		result, err = personnel.ImportCSV(tx, file)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(result))
}

func (ep *Endpoint) Branches(c *gin.Context) {
	var branches []model.Branch
	err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		branches, err = personnel.Branches(db)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(branches, int64(len(branches))))
}

func (ep *Endpoint) Departments(c *gin.Context) {
	branchID, err := web.QueryUint(c, "branchId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var departments []model.Department
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		departments, err = personnel.Departments(db, branchID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(departments, int64(len(departments))))
}

func (ep *Endpoint) Teams(c *gin.Context) {
	departmentID, err := web.QueryUint(c, "departmentId")
	if err != nil {
		web.WriteError(c, err)
		return
	}

	var teams []model.Team
	err = ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		teams, err = personnel.Teams(db, departmentID)
		return err
	})
	if err != nil {
		web.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(teams, int64(len(teams))))
}

// Package personnel reads the staff directory and imports it from CSV.
package personnel

import (
	"errors"
	"strings"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"gorm.io/gorm"
)

const DefaultPageSize = 100

type Filter struct {
	BranchID     *uint
	DepartmentID *uint
	TeamID       *uint
	Active       *bool
	Search       string
}

func (f Filter) apply(query *gorm.DB) *gorm.DB {
	if f.BranchID != nil {
		query = query.Where("branch_id = ?", *f.BranchID)
	}
	if f.DepartmentID != nil {
		query = query.Where("department_id = ?", *f.DepartmentID)
	}
	if f.TeamID != nil {
		query = query.Where("team_id = ?", *f.TeamID)
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(code) LIKE ?", like, like, like)
	}
	return query
}

// List returns one page of personnel ordered by name, and the total match count.
func List(db *gorm.DB, filter Filter, limit, offset int) ([]model.Personnel, int64, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var total int64
	if err := filter.apply(db.Model(&model.Personnel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var people []model.Personnel
	err := filter.apply(db.Preload("Shift")).
		Order("first_name, last_name, id").
		Limit(limit).
		Offset(offset).
		Find(&people).Error
	if err != nil {
		return nil, 0, err
	}
	return people, total, nil
}

func Get(db *gorm.DB, id uint) (*model.Personnel, error) {
	var p model.Personnel
	if err := db.Preload("Shift").Take(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NotFound("Personel bulunamadı")
		}
		return nil, err
	}
	return &p, nil
}

func Branches(db *gorm.DB) ([]model.Branch, error) {
	var branches []model.Branch
	if err := db.Order("name").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Departments lists departments, optionally for one branch.
func Departments(db *gorm.DB, branchID *uint) ([]model.Department, error) {
	query := db.Order("name")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	var departments []model.Department
	if err := query.Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// Teams lists teams, optionally for one department.
func Teams(db *gorm.DB, departmentID *uint) ([]model.Team, error) {
	query := db.Order("name")
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	var teams []model.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

package personnel

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns a roster CSV may carry. code, first_name and last_name are required.
const (
	ColumnCode       = "code"
	ColumnFirstName  = "first_name"
	ColumnLastName   = "last_name"
	ColumnEmail      = "email"
	ColumnPhone      = "phone"
	ColumnPosition   = "position"
	ColumnBranch     = "branch"
	ColumnDepartment = "department"
	ColumnTeam       = "team"
	ColumnShift      = "shift" // "08:00-17:00"
	ColumnActive     = "active"
)

type ImportResult struct {
	Rows     int `json:"rows"`
	Branches int `json:"branches"`
	Shifts   int `json:"shifts"`
}

type importer struct {
	db       *gorm.DB
	branches map[string]uint
	depts    map[string]uint
	teams    map[string]uint
	shifts   map[string]uint
	result   ImportResult
}

// ImportCSV upserts personnel by code. Branches, departments, teams and
// shifts named in the file are created when missing. Run it inside a
// transaction so a bad row leaves nothing behind.
func ImportCSV(db *gorm.DB, r io.Reader) (*ImportResult, error) {
	rows, err := utils.ParseCSVRows(r)
	if err != nil {
		return nil, core.Validation("file", fmt.Sprintf("CSV okunamadı: %v", err))
	}

	im := &importer{
		db:       db,
		branches: map[string]uint{},
		depts:    map[string]uint{},
		teams:    map[string]uint{},
		shifts:   map[string]uint{},
	}
	for i, row := range rows {
		if err := im.row(row); err != nil {
			var typed *core.Error
			if errors.As(err, &typed) {
				return nil, core.Validation(typed.Field, fmt.Sprintf("Satır %d: %s", i+2, typed.Message))
			}
			return nil, err
		}
		im.result.Rows++
	}
	return &im.result, nil
}

func (im *importer) row(row map[string]string) error {
	code := row[ColumnCode]
	if code == "" {
		return core.Validation(ColumnCode, "Personel kodu zorunludur")
	}
	if row[ColumnFirstName] == "" || row[ColumnLastName] == "" {
		return core.Validation(ColumnFirstName, "Ad ve soyad zorunludur")
	}

	p := model.Personnel{
		Code:      code,
		FirstName: row[ColumnFirstName],
		LastName:  row[ColumnLastName],
		Email:     row[ColumnEmail],
		Phone:     utils.NormalizePhone(row[ColumnPhone]),
		Position:  row[ColumnPosition],
		Active:    !strings.EqualFold(row[ColumnActive], "false") && row[ColumnActive] != "0",
	}

	var err error
	if p.BranchID, err = im.branch(row[ColumnBranch]); err != nil {
		return err
	}
	if p.DepartmentID, err = im.department(p.BranchID, row[ColumnDepartment]); err != nil {
		return err
	}
	if p.TeamID, err = im.team(p.DepartmentID, row[ColumnTeam]); err != nil {
		return err
	}
	if p.ShiftID, err = im.shift(row[ColumnShift]); err != nil {
		return err
	}

	return im.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "phone", "position",
			"branch_id", "department_id", "team_id", "shift_id", "active", "updated_at",
		}),
	}).Create(&p).Error
}

func (im *importer) branch(name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := im.branches[name]; ok {
		return &id, nil
	}
	b := model.Branch{Name: name}
	tx := im.db.Where(model.Branch{Name: name}).Attrs(model.Branch{Active: true}).FirstOrCreate(&b)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected > 0 {
		im.result.Branches++
	}
	im.branches[name] = b.ID
	return &b.ID, nil
}

func (im *importer) department(branchID *uint, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	if branchID == nil {
		return nil, core.Validation(ColumnBranch, "Departman için şube zorunludur")
	}
	key := fmt.Sprintf("%d/%s", *branchID, name)
	if id, ok := im.depts[key]; ok {
		return &id, nil
	}
	d := model.Department{}
	if err := im.db.Where(model.Department{BranchID: *branchID, Name: name}).FirstOrCreate(&d).Error; err != nil {
		return nil, err
	}
	im.depts[key] = d.ID
	return &d.ID, nil
}

func (im *importer) team(departmentID *uint, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	if departmentID == nil {
		return nil, core.Validation(ColumnDepartment, "Takım için departman zorunludur")
	}
	key := fmt.Sprintf("%d/%s", *departmentID, name)
	if id, ok := im.teams[key]; ok {
		return &id, nil
	}
	t := model.Team{}
	if err := im.db.Where(model.Team{DepartmentID: *departmentID, Name: name}).FirstOrCreate(&t).Error; err != nil {
		return nil, err
	}
	im.teams[key] = t.ID
	return &t.ID, nil
}

func (im *importer) shift(value string) (*uint, error) {
	if value == "" {
		return nil, nil
	}
	if id, ok := im.shifts[value]; ok {
		return &id, nil
	}
	start, end, ok := strings.Cut(value, "-")
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if !ok || !validClock(start) || !validClock(end) {
		return nil, core.Validation(ColumnShift, "Vardiya SS:DD-SS:DD biçiminde olmalı")
	}

	s := model.Shift{}
	tx := im.db.Where(model.Shift{StartTime: start, EndTime: end}).
		Attrs(model.Shift{Name: start + "-" + end}).
		FirstOrCreate(&s)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected > 0 {
		im.result.Shifts++
	}
	im.shifts[value] = s.ID
	return &s.ID, nil
}

func validClock(s string) bool {
	_, err := utils.ParseTimeOnDate(time.Time{}, s)
	return err == nil
}

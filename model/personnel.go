package model

import "time"

type Personnel struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"size:40;uniqueIndex" json:"code"`
	FirstName    string     `gorm:"size:80;not null" json:"firstName"`
	LastName     string     `gorm:"size:80;not null" json:"lastName"`
	Email        string     `gorm:"size:160;index" json:"email"`
	Phone        string     `gorm:"size:40" json:"phone"`
	Position     string     `gorm:"size:80" json:"position"`
	BranchID     *uint      `gorm:"index" json:"branchId"`
	DepartmentID *uint      `gorm:"index" json:"departmentId"`
	TeamID       *uint      `gorm:"index" json:"teamId"`
	ShiftID      *uint      `json:"shiftId"`
	Active       bool       `gorm:"not null" json:"active"`
	StartDate    *time.Time `json:"startDate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Shift *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
}

func (Personnel) TableName() string {
	return "personnel"
}

func (p Personnel) FullName() string {
	return p.FirstName + " " + p.LastName
}

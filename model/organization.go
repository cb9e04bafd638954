package model

import "time"

type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:40" json:"phone"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Branch) TableName() string {
	return "branches"
}

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"not null;uniqueIndex:idx_department_branch_name" json:"branchId"`
	Name      string    `gorm:"size:120;not null;uniqueIndex:idx_department_branch_name" json:"name"`
	ManagerID *uint     `json:"managerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

type Team struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DepartmentID uint      `gorm:"not null;uniqueIndex:idx_team_department_name" json:"departmentId"`
	Name         string    `gorm:"size:120;not null;uniqueIndex:idx_team_department_name" json:"name"`
	LeaderID     *uint     `json:"leaderId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Team) TableName() string {
	return "teams"
}

// Shift times are local wall-clock strings ("08:00") in the configured timezone.
type Shift struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  *uint     `json:"branchId"`
	Name      string    `gorm:"size:80;not null" json:"name"`
	StartTime string    `gorm:"size:8;not null" json:"startTime"`
	EndTime   string    `gorm:"size:8;not null" json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Shift) TableName() string {
	return "shifts"
}

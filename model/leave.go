package model

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveType string

const (
	LeaveAnnual   LeaveType = "annual"
	LeaveSick     LeaveType = "sick"
	LeaveUnpaid   LeaveType = "unpaid"
	LeaveExcuse   LeaveType = "excuse"
	LeaveMaternal LeaveType = "maternity"
)

type LeaveRequest struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	PersonnelID     uint        `gorm:"not null;index" json:"personnelId"`
	Type            LeaveType   `gorm:"type:varchar(20);not null" json:"type"`
	StartDate       string      `gorm:"type:varchar(10);not null" json:"startDate"`
	EndDate         string      `gorm:"type:varchar(10);not null" json:"endDate"`
	TotalDays       int         `gorm:"not null" json:"totalDays"`
	Reason          string      `gorm:"size:500" json:"reason"`
	Status          LeaveStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DecidedBy       *string     `gorm:"size:120" json:"decidedBy"`
	DecidedAt       *time.Time  `json:"decidedAt"`
	RejectionReason *string     `gorm:"size:500" json:"rejectionReason"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	Personnel *Personnel `gorm:"foreignKey:PersonnelID" json:"personnel,omitempty"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

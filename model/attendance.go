package model

import "time"

type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
	AttendanceLate       AttendanceStatus = "late"
	AttendanceEarlyLeave AttendanceStatus = "early_leave"
)

type AttendanceRecord struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	PersonnelID  uint             `gorm:"not null;uniqueIndex:idx_attendance_cycle" json:"personnelId"`
	Date         string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_cycle" json:"date"`
	Cycle        int              `gorm:"not null;default:1;uniqueIndex:idx_attendance_cycle" json:"cycle"`
	CheckInTime  *time.Time       `json:"checkInTime"`
	CheckOutTime *time.Time       `json:"checkOutTime"`
	QRTokenID    *uint            `json:"qrTokenId"`
	QRScreenID   *string          `gorm:"size:64" json:"qrScreenId"`
	Location     string           `gorm:"size:255" json:"location"`
	Notes        string           `gorm:"size:500" json:"notes"`
	Status       AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`

	Personnel *Personnel `gorm:"foreignKey:PersonnelID" json:"personnel,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

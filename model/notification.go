package model

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

type TargetType string

const (
	TargetAll        TargetType = "all"
	TargetBranch     TargetType = "branch"
	TargetIndividual TargetType = "individual"
	TargetTeam       TargetType = "team"
)

type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Title      string           `gorm:"size:160;not null" json:"title"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	Type       NotificationType `gorm:"type:varchar(10);not null" json:"type"`
	TargetType TargetType       `gorm:"type:varchar(12);not null" json:"targetType"`
	TargetID   *uint            `json:"targetId"`
	CreatedBy  string           `gorm:"size:120" json:"createdBy"`
	Recipients int              `json:"recipients"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

type NotificationReceipt struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	NotificationID uint       `gorm:"not null;uniqueIndex:idx_receipt" json:"notificationId"`
	PersonnelID    uint       `gorm:"not null;uniqueIndex:idx_receipt;index" json:"personnelId"`
	ReadAt         *time.Time `json:"readAt"`
	CreatedAt      time.Time  `json:"createdAt"`

	Notification *Notification `gorm:"foreignKey:NotificationID" json:"notification,omitempty"`
}

func (NotificationReceipt) TableName() string {
	return "notification_receipts"
}

// SmsLog keeps one row per bulk send so operators can audit deliveries.
type SmsLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Message      string         `gorm:"type:text;not null" json:"message"`
	PhoneNumbers datatypes.JSON `json:"phoneNumbers"`
	Requested    int            `json:"requested"`
	Sent         int            `json:"sent"`
	Failed       int            `json:"failed"`
	SentBy       string         `gorm:"size:120" json:"sentBy"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (SmsLog) TableName() string {
	return "sms_logs"
}

// Preference is a per-user key/value UI setting (menu order, sidebar state).
type Preference struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	Subject   string         `gorm:"size:120;not null;uniqueIndex:idx_preference" json:"-"`
	Key       string         `gorm:"column:pref_key;size:80;not null;uniqueIndex:idx_preference" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Preference) TableName() string {
	return "preferences"
}

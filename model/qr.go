package model

import "time"

type QRToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:64;not null;uniqueIndex" json:"code"`
	BranchID  uint      `gorm:"not null;index" json:"branchId"`
	ScreenID  *string   `gorm:"size:64;index" json:"screenId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (QRToken) TableName() string {
	return "qr_tokens"
}

// ValidAt reports whether the token may be scanned at now.
func (t QRToken) ValidAt(now time.Time) bool {
	return t.Active && now.Before(t.ExpiresAt)
}

type QRScreen struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ScreenID       string     `gorm:"size:64;not null;uniqueIndex" json:"screenId"`
	BranchID       uint       `gorm:"not null;index" json:"branchId"`
	Name           string     `gorm:"size:120;not null" json:"name"`
	AccessCode     string     `gorm:"size:16;not null" json:"accessCode"`
	Active         bool       `gorm:"not null" json:"active"`
	DeviceID       *string    `gorm:"size:64" json:"deviceId"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (QRScreen) TableName() string {
	return "qr_screens"
}

// BoundTo reports whether deviceID is the device currently allowed to display.
func (s QRScreen) BoundTo(deviceID string) bool {
	return s.DeviceID != nil && deviceID != "" && *s.DeviceID == deviceID
}

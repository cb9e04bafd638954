// Package qr issues rotating attendance tokens and manages the kiosk screens
// that display them.
package qr

import (
	"errors"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Issuer struct {
	Clock utils.Clock
}

func NewIssuer(clock utils.Clock) *Issuer {
	return &Issuer{Clock: clock}
}

type IssueRequest struct {
	BranchID uint
	ScreenID *string
	TTL      time.Duration
}

// Issue creates a new active token. Earlier tokens for the same screen are
// left untouched; CurrentForScreen always prefers the newest one.
func (i *Issuer) Issue(db *gorm.DB, req IssueRequest) (*model.QRToken, error) {
	if req.TTL <= 0 {
		return nil, core.Validation("expiryMinutes", "Geçerlilik süresi sıfırdan büyük olmalı")
	}

	if req.ScreenID != nil {
		var screen model.QRScreen
		if err := db.Where("screen_id = ?", *req.ScreenID).Take(&screen).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, core.NotFound("QR ekranı bulunamadı")
			}
			return nil, err
		}
		if req.BranchID == 0 {
			req.BranchID = screen.BranchID
		} else if req.BranchID != screen.BranchID {
			return nil, core.Validation("branchId", "Ekran bu şubeye ait değil")
		}
	}
	if req.BranchID == 0 {
		return nil, core.Validation("branchId", "Şube seçilmeli")
	}

	now := i.Clock.Now()
	token := model.QRToken{
		Code:      uuid.NewString(),
		BranchID:  req.BranchID,
		ScreenID:  req.ScreenID,
		ExpiresAt: now.Add(req.TTL),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// CurrentForScreen returns the newest live token for the screen, or nil when
// there is none or the screen is inactive.
func (i *Issuer) CurrentForScreen(db *gorm.DB, screenID string) (*model.QRToken, error) {
	var screen model.QRScreen
	if err := db.Where("screen_id = ?", screenID).Take(&screen).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NotFound("QR ekranı bulunamadı")
		}
		return nil, err
	}
	if !screen.Active {
		return nil, nil
	}

	now := i.Clock.Now()
	var tokens []model.QRToken
	if err := db.Where("screen_id = ? AND active = ? AND expires_at > ?", screenID, true, now).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	if len(tokens) == 0 || !tokens[0].ValidAt(now) {
		return nil, nil
	}
	return &tokens[0], nil
}

// ListActive returns every live token, optionally limited to one branch.
func (i *Issuer) ListActive(db *gorm.DB, branchID *uint) ([]model.QRToken, error) {
	query := db.Where("active = ? AND expires_at > ?", true, i.Clock.Now())
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}

	var tokens []model.QRToken
	if err := query.Order("created_at DESC, id DESC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// FindByCode looks a scanned value up regardless of its validity.
func (i *Issuer) FindByCode(db *gorm.DB, code string) (*model.QRToken, error) {
	var token model.QRToken
	if err := db.Where("code = ?", code).Take(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// InvalidateAll deactivates every active token, or only a branch's. Rows are
// kept for the audit trail.
func (i *Issuer) InvalidateAll(db *gorm.DB, branchID *uint) (int64, error) {
	query := db.Model(&model.QRToken{}).Where("active = ?", true)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	result := query.Updates(map[string]interface{}{
		"active":     false,
		"updated_at": i.Clock.Now(),
	})
	return result.RowsAffected, result.Error
}

package qr

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"gorm.io/gorm"
)

const (
	AccessCodeLength = 6
	// no 0/O or 1/I so codes survive being read aloud
	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func GenerateAccessCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := 0; i < AccessCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(accessCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Registry owns the kiosk screens.
type Registry struct {
	Clock utils.Clock
}

func NewRegistry(clock utils.Clock) *Registry {
	return &Registry{Clock: clock}
}

type CreateScreenRequest struct {
	ScreenID   string
	BranchID   uint
	Name       string
	AccessCode string
	Active     bool
}

func (r *Registry) Create(db *gorm.DB, req CreateScreenRequest) (*model.QRScreen, error) {
	req.ScreenID = strings.TrimSpace(req.ScreenID)
	if req.ScreenID == "" {
		return nil, core.Validation("screenId", "Ekran kimliği zorunludur")
	}

	var count int64
	if err := db.Model(&model.QRScreen{}).Where("screen_id = ?", req.ScreenID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, core.Conflict("Bu ekran kimliği zaten kullanılıyor")
	}

	var branches int64
	if err := db.Model(&model.Branch{}).Where("id = ?", req.BranchID).Count(&branches).Error; err != nil {
		return nil, err
	}
	if branches == 0 {
		return nil, core.NotFound("Şube bulunamadı")
	}

	code := utils.NormalizeCode(req.AccessCode)
	if code == "" {
		var err error
		if code, err = GenerateAccessCode(); err != nil {
			return nil, err
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.ScreenID
	}

	now := r.Clock.Now()
	screen := model.QRScreen{
		ScreenID:   req.ScreenID,
		BranchID:   req.BranchID,
		Name:       name,
		AccessCode: code,
		Active:     req.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&screen).Error; err != nil {
		return nil, err
	}
	return &screen, nil
}

func (r *Registry) Get(db *gorm.DB, screenID string) (*model.QRScreen, error) {
	var screen model.QRScreen
	if err := db.Where("screen_id = ?", screenID).Take(&screen).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NotFound("QR ekranı bulunamadı")
		}
		return nil, err
	}
	return &screen, nil
}

func (r *Registry) List(db *gorm.DB, branchID *uint) ([]model.QRScreen, error) {
	query := db.Order("screen_id")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	var screens []model.QRScreen
	if err := query.Find(&screens).Error; err != nil {
		return nil, err
	}
	return screens, nil
}

// ScreenUpdate is a partial update. SetDeviceID distinguishes "leave the
// binding alone" from "set it", where a nil DeviceID unbinds.
type ScreenUpdate struct {
	Name        *string
	AccessCode  *string
	Active      *bool
	SetDeviceID bool
	DeviceID    *string
}

// Update applies a partial change. Changing the access code leaves the
// current binding intact; only an explicit unbind revokes the paired device.
func (r *Registry) Update(db *gorm.DB, screenID string, upd ScreenUpdate) (*model.QRScreen, error) {
	screen, err := r.Get(db, screenID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"updated_at": r.Clock.Now()}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, core.Validation("name", "Ekran adı boş olamaz")
		}
		changes["name"] = name
	}
	if upd.AccessCode != nil {
		code := utils.NormalizeCode(*upd.AccessCode)
		if code == "" {
			return nil, core.Validation("accessCode", "Erişim kodu boş olamaz")
		}
		changes["access_code"] = code
	}
	if upd.Active != nil {
		changes["active"] = *upd.Active
	}
	if upd.SetDeviceID {
		if upd.DeviceID != nil && strings.TrimSpace(*upd.DeviceID) != "" {
			changes["device_id"] = strings.TrimSpace(*upd.DeviceID)
		} else {
			changes["device_id"] = nil
		}
	}

	if err := db.Model(screen).Updates(changes).Error; err != nil {
		return nil, err
	}
	return r.Get(db, screenID)
}

// Unbind clears the bound device; the kiosk notices on its next revalidation.
func (r *Registry) Unbind(db *gorm.DB, screenID string) (*model.QRScreen, error) {
	return r.Update(db, screenID, ScreenUpdate{SetDeviceID: true})
}

func (r *Registry) RegenerateAccessCode(db *gorm.DB, screenID string) (*model.QRScreen, error) {
	code, err := GenerateAccessCode()
	if err != nil {
		return nil, err
	}
	return r.Update(db, screenID, ScreenUpdate{AccessCode: &code})
}

// Delete removes a screen but refuses to remove the last one.
func (r *Registry) Delete(db *gorm.DB, screenID string) error {
	screen, err := r.Get(db, screenID)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.QRScreen{}).Count(&count).Error; err != nil {
		return err
	}
	if count <= 1 {
		return core.Conflict("En az bir QR ekranı bulunmalıdır")
	}

	return db.Delete(screen).Error
}

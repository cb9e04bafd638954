// Package notify fans notifications and bulk SMS out to personnel.
package notify

import (
	"errors"
	"strings"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	notificationTypes = []model.NotificationType{
		model.NotificationInfo,
		model.NotificationWarning,
		model.NotificationError,
		model.NotificationSuccess,
	}
	targetTypes = []model.TargetType{
		model.TargetAll,
		model.TargetBranch,
		model.TargetIndividual,
		model.TargetTeam,
	}
)

type Broadcaster struct {
	Clock utils.Clock
	Log   zerolog.Logger
}

func NewBroadcaster(clock utils.Clock, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{Clock: clock, Log: log}
}

type BroadcastRequest struct {
	Title      string
	Message    string
	Type       model.NotificationType
	TargetType model.TargetType
	TargetID   *uint
	CreatedBy  string
}

func contains[T comparable](items []T, v T) bool {
	return utils.Find(items, func(item T) bool { return item == v }) != nil
}

// Recipients resolves a target to the ids of active personnel.
func Recipients(db *gorm.DB, targetType model.TargetType, targetID *uint) ([]uint, error) {
	if targetType != model.TargetAll && targetID == nil {
		return nil, core.Validation("targetId", "Hedef seçilmeli")
	}

	query := db.Model(&model.Personnel{}).Where("active = ?", true)
	switch targetType {
	case model.TargetAll:
	case model.TargetBranch:
		query = query.Where("branch_id = ?", *targetID)
	case model.TargetTeam:
		query = query.Where("team_id = ?", *targetID)
	case model.TargetIndividual:
		query = query.Where("id = ?", *targetID)
	default:
		return nil, core.Validation("targetType", "Geçersiz hedef türü")
	}

	var ids []uint
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if targetType == model.TargetIndividual && len(ids) == 0 {
		return nil, core.NotFound("Personel bulunamadı")
	}
	return ids, nil
}

// Broadcast stores the notification and one receipt per recipient.
func (b *Broadcaster) Broadcast(db *gorm.DB, req BroadcastRequest) (*model.Notification, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" {
		return nil, core.Validation("title", "Başlık zorunludur")
	}
	if req.Message == "" {
		return nil, core.Validation("message", "Mesaj zorunludur")
	}
	if req.Type == "" {
		req.Type = model.NotificationInfo
	}
	if !contains(notificationTypes, req.Type) {
		return nil, core.Validation("type", "Geçersiz bildirim türü")
	}
	if !contains(targetTypes, req.TargetType) {
		return nil, core.Validation("targetType", "Geçersiz hedef türü")
	}
	if req.TargetType == model.TargetAll {
		req.TargetID = nil
	}

	ids, err := Recipients(db, req.TargetType, req.TargetID)
	if err != nil {
		return nil, err
	}

	now := b.Clock.Now()
	notification := model.Notification{
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		CreatedBy:  req.CreatedBy,
		Recipients: len(ids),
		CreatedAt:  now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		receipts := utils.Map(ids, func(id uint) model.NotificationReceipt {
			return model.NotificationReceipt{NotificationID: notification.ID, PersonnelID: id, CreatedAt: now}
		})
		return tx.CreateInBatches(receipts, 200).Error
	})
	if err != nil {
		return nil, err
	}

	b.Log.Info().
		Uint("notification", notification.ID).
		Str("target", string(req.TargetType)).
		Int("recipients", len(ids)).
		Msg("notification broadcast")
	return &notification, nil
}

// MarkRead marks the personnel's receipt as read. Marking twice keeps the
// first read time.
func (b *Broadcaster) MarkRead(db *gorm.DB, notificationID, personnelID uint) (*model.NotificationReceipt, error) {
	var receipt model.NotificationReceipt
	err := db.Where("notification_id = ? AND personnel_id = ?", notificationID, personnelID).Take(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.NotFound("Bildirim bulunamadı")
	}
	if err != nil {
		return nil, err
	}

	if receipt.ReadAt == nil {
		now := b.Clock.Now()
		if err := db.Model(&receipt).Update("read_at", now).Error; err != nil {
			return nil, err
		}
		receipt.ReadAt = &now
	}
	return &receipt, nil
}

// List returns the personnel's receipts, newest first.
func (b *Broadcaster) List(db *gorm.DB, personnelID uint, unreadOnly bool) ([]model.NotificationReceipt, error) {
	query := db.Preload("Notification").Where("personnel_id = ?", personnelID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var receipts []model.NotificationReceipt
	if err := query.Order("created_at DESC, id DESC").Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

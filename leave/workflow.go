// Package leave implements leave requests and their approval.
package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/infrastructure/communication"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var leaveTypes = []model.LeaveType{
	model.LeaveAnnual,
	model.LeaveSick,
	model.LeaveUnpaid,
	model.LeaveExcuse,
	model.LeaveMaternal,
}

type Workflow struct {
	Mailer communication.Mailer
	Clock  utils.Clock
	Log    zerolog.Logger
}

func NewWorkflow(mailer communication.Mailer, clock utils.Clock, log zerolog.Logger) *Workflow {
	return &Workflow{Mailer: mailer, Clock: clock, Log: log}
}

type CreateRequest struct {
	PersonnelID uint
	Type        model.LeaveType
	StartDate   string
	EndDate     string
	Reason      string
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(utils.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, core.Validation(field, "Tarih YYYY-AA-GG biçiminde olmalı")
	}
	return t, nil
}

// Create files a pending request. TotalDays counts both ends.
func (w *Workflow) Create(db *gorm.DB, req CreateRequest) (*model.LeaveRequest, error) {
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, core.Validation("endDate", "Bitiş tarihi başlangıç tarihinden önce olamaz")
	}
	if utils.Find(leaveTypes, func(t model.LeaveType) bool { return t == req.Type }) == nil {
		return nil, core.Validation("type", "Geçersiz izin türü")
	}

	var person model.Personnel
	if err := db.Limit(1).Find(&person, req.PersonnelID).Error; err != nil {
		return nil, err
	}
	if person.ID == 0 || !person.Active {
		return nil, core.NotFound("Personel bulunamadı")
	}

	startKey, endKey := start.Format(utils.DateLayout), end.Format(utils.DateLayout)
	var overlapping int64
	if err := db.Model(&model.LeaveRequest{}).
		Where("personnel_id = ? AND status <> ? AND start_date <= ? AND end_date >= ?",
			req.PersonnelID, model.LeaveRejected, endKey, startKey).
		Count(&overlapping).Error; err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, core.Conflict("Bu tarihlerle çakışan bir izin talebi zaten var")
	}

	now := w.Clock.Now()
	request := model.LeaveRequest{
		PersonnelID: req.PersonnelID,
		Type:        req.Type,
		StartDate:   startKey,
		EndDate:     endKey,
		TotalDays:   utils.DaysInclusive(start, end),
		Reason:      strings.TrimSpace(req.Reason),
		Status:      model.LeavePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (w *Workflow) Get(db *gorm.DB, id uint) (*model.LeaveRequest, error) {
	var request model.LeaveRequest
	if err := db.Preload("Personnel").Take(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NotFound("İzin talebi bulunamadı")
		}
		return nil, err
	}
	return &request, nil
}

type ListFilter struct {
	Status      *model.LeaveStatus
	PersonnelID *uint
}

func (w *Workflow) List(db *gorm.DB, filter ListFilter) ([]model.LeaveRequest, error) {
	query := db.Preload("Personnel").Order("created_at DESC, id DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}

	var requests []model.LeaveRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (w *Workflow) Approve(ctx context.Context, db *gorm.DB, id uint, decidedBy string) (*model.LeaveRequest, error) {
	return w.decide(ctx, db, id, decidedBy, model.LeaveApproved, nil)
}

// Reject requires a non-empty reason.
func (w *Workflow) Reject(ctx context.Context, db *gorm.DB, id uint, decidedBy, reason string) (*model.LeaveRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, core.Validation("reason", "Ret sebebi zorunludur")
	}
	return w.decide(ctx, db, id, decidedBy, model.LeaveRejected, &reason)
}

// decide moves a pending request to its final status. The status check is
// part of the update so two deciders cannot both win.
func (w *Workflow) decide(ctx context.Context, db *gorm.DB, id uint, decidedBy string, status model.LeaveStatus, reason *string) (*model.LeaveRequest, error) {
	if _, err := w.Get(db, id); err != nil {
		return nil, err
	}

	now := w.Clock.Now()
	result := db.Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", id, model.LeavePending).
		Updates(map[string]interface{}{
			"status":           status,
			"decided_by":       decidedBy,
			"decided_at":       now,
			"rejection_reason": reason,
			"updated_at":       now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, core.Conflict("Yalnızca bekleyen izin talepleri sonuçlandırılabilir")
	}

	request, err := w.Get(db, id)
	if err != nil {
		return nil, err
	}
	w.notify(ctx, request)
	return request, nil
}

// notify mails the decision; delivery failures are logged only.
func (w *Workflow) notify(ctx context.Context, request *model.LeaveRequest) {
	if w.Mailer == nil || request.Personnel == nil || request.Personnel.Email == "" {
		return
	}

	verdict := "onaylandı"
	if request.Status == model.LeaveRejected {
		verdict = "reddedildi"
	}
	text := fmt.Sprintf("Merhaba %s,\n\n%s - %s tarihleri arasındaki %d günlük izin talebiniz %s.",
		request.Personnel.FirstName, request.StartDate, request.EndDate, request.TotalDays, verdict)
	if request.RejectionReason != nil {
		text += fmt.Sprintf("\nSebep: %s", *request.RejectionReason)
	}

	err := w.Mailer.Send(ctx, communication.Message{
		To:      []string{request.Personnel.Email},
		Subject: fmt.Sprintf("İzin talebiniz %s", verdict),
		Text:    text,
	})
	if err != nil {
		w.Log.Warn().Err(err).Uint("leave", request.ID).Msg("leave decision mail failed")
	}
}

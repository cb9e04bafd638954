// Package attendance turns scanned QR tokens into check-in and check-out records.
package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/qr"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RepeatPolicy decides what a scan does once the day's record already has
// both a check-in and a check-out.
type RepeatPolicy string

const (
	RepeatReject            RepeatPolicy = "reject"
	RepeatNewCycle          RepeatPolicy = "new_cycle"
	RepeatOverwriteCheckout RepeatPolicy = "overwrite_checkout"
)

func ParseRepeatPolicy(s string) (RepeatPolicy, error) {
	switch p := RepeatPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RepeatReject, RepeatNewCycle, RepeatOverwriteCheckout:
		return p, nil
	case "":
		return RepeatNewCycle, nil
	}
	return "", fmt.Errorf("unknown attendance repeat policy %q", s)
}

type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

type Recorder struct {
	Issuer *qr.Issuer
	Rules  Rules
	Policy RepeatPolicy
	Clock  utils.Clock
	Log    zerolog.Logger
}

func NewRecorder(issuer *qr.Issuer, rules Rules, policy RepeatPolicy, clock utils.Clock, log zerolog.Logger) *Recorder {
	return &Recorder{Issuer: issuer, Rules: rules, Policy: policy, Clock: clock, Log: log}
}

type ScanRequest struct {
	Code        string
	PersonnelID uint
	Location    string
	Notes       string
}

type ScanResult struct {
	Action Action                 `json:"action"`
	Record model.AttendanceRecord `json:"record"`
}

// RecordScan validates the token and writes the check-in or check-out.
// The token itself is never modified.
func (r *Recorder) RecordScan(db *gorm.DB, req ScanRequest) (*ScanResult, error) {
	token, err := r.Issuer.FindByCode(db, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, core.InvalidToken("Geçersiz QR kod")
	}

	now := r.Clock.Now()
	if !token.ValidAt(now) {
		return nil, core.ExpiredToken("QR kodun süresi dolmuş, lütfen ekrandaki yeni kodu okutun")
	}

	var person model.Personnel
	if err := db.Preload("Shift").Limit(1).Find(&person, req.PersonnelID).Error; err != nil {
		return nil, err
	}
	if person.ID == 0 || !person.Active {
		return nil, core.UnknownPersonnel("Personel bulunamadı")
	}

	var result *ScanResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = r.apply(tx, token, &person, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.Log.Info().
		Uint("personnel", person.ID).
		Str("action", string(result.Action)).
		Str("status", string(result.Record.Status)).
		Msg("attendance recorded")
	return result, nil
}

func (r *Recorder) apply(tx *gorm.DB, token *model.QRToken, person *model.Personnel, req ScanRequest, now time.Time) (*ScanResult, error) {
	date := utils.DateKey(now, r.Rules.location())

	var latest []model.AttendanceRecord
	if err := tx.Where("personnel_id = ? AND date = ?", person.ID, date).
		Order("cycle DESC, id DESC").
		Limit(1).
		Find(&latest).Error; err != nil {
		return nil, err
	}

	if len(latest) == 0 {
		return r.checkIn(tx, token, person, req, date, 1, now)
	}

	record := latest[0]
	if record.CheckInTime != nil && record.CheckOutTime == nil {
		return r.checkOut(tx, &record, person, now)
	}

	switch r.Policy {
	case RepeatReject:
		return nil, core.Conflict("Bugün için giriş ve çıkış zaten kaydedilmiş")
	case RepeatOverwriteCheckout:
		return r.checkOut(tx, &record, person, now)
	default:
		return r.checkIn(tx, token, person, req, date, record.Cycle+1, now)
	}
}

func (r *Recorder) checkIn(tx *gorm.DB, token *model.QRToken, person *model.Personnel, req ScanRequest, date string, cycle int, now time.Time) (*ScanResult, error) {
	status, err := r.Rules.CheckInStatus(now, person.Shift)
	if err != nil {
		r.Log.Warn().Err(err).Uint("personnel", person.ID).Msg("shift times could not be parsed")
	}

	tokenID := token.ID
	record := model.AttendanceRecord{
		PersonnelID: person.ID,
		Date:        date,
		Cycle:       cycle,
		CheckInTime: &now,
		QRTokenID:   &tokenID,
		QRScreenID:  token.ScreenID,
		Location:    req.Location,
		Notes:       req.Notes,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(&record).Error; err != nil {
		// a concurrent scan for the same person won the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, core.Conflict("Bu okutma zaten işleniyor, lütfen tekrar deneyin")
		}
		return nil, err
	}
	return &ScanResult{Action: ActionCheckIn, Record: record}, nil
}

func (r *Recorder) checkOut(tx *gorm.DB, record *model.AttendanceRecord, person *model.Personnel, now time.Time) (*ScanResult, error) {
	// a record without a check-in cannot come from a scan; treat it as checked in now
	checkIn := now
	if record.CheckInTime != nil {
		checkIn = *record.CheckInTime
	}

	base := record.Status
	if base == model.AttendanceEarlyLeave {
		// re-evaluate from the check-in when an earlier checkout is overwritten
		var err error
		if base, err = r.Rules.CheckInStatus(checkIn, person.Shift); err != nil {
			base = model.AttendancePresent
		}
	}
	status, err := r.Rules.CheckOutStatus(checkIn, now, base, person.Shift)
	if err != nil {
		r.Log.Warn().Err(err).Uint("personnel", person.ID).Msg("shift times could not be parsed")
	}

	record.CheckOutTime = &now
	record.Status = status
	record.UpdatedAt = now
	if err := tx.Model(record).Updates(map[string]interface{}{
		"check_out_time": now,
		"status":         status,
		"updated_at":     now,
	}).Error; err != nil {
		return nil, err
	}
	return &ScanResult{Action: ActionCheckOut, Record: *record}, nil
}

// Today lists the records of the current local day, optionally for one branch.
func (r *Recorder) Today(db *gorm.DB, branchID *uint) ([]model.AttendanceRecord, error) {
	today := utils.DateKey(r.Clock.Now(), r.Rules.location())
	return r.List(db, ListFilter{From: today, To: today, BranchID: branchID})
}

type ListFilter struct {
	From        string
	To          string
	PersonnelID *uint
	BranchID    *uint
}

// List returns records whose date falls in [From, To]; dates are YYYY-MM-DD.
func (r *Recorder) List(db *gorm.DB, filter ListFilter) ([]model.AttendanceRecord, error) {
	if filter.From != "" && filter.To != "" && filter.To < filter.From {
		return nil, core.Validation("to", "Bitiş tarihi başlangıç tarihinden önce olamaz")
	}

	query := db.Preload("Personnel")
	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}
	if filter.BranchID != nil {
		query = query.Where("personnel_id IN (?)",
			db.Model(&model.Personnel{}).Select("id").Where("branch_id = ?", *filter.BranchID))
	}

	var records []model.AttendanceRecord
	if err := query.Order("date, personnel_id, cycle").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Package dashboard computes the read-only rollups shown on the admin home page.
package dashboard

import (
	"sort"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"gorm.io/gorm"
)

const MaxTrendDays = 90

type Aggregator struct {
	Clock    utils.Clock
	Location *time.Location
}

func NewAggregator(clock utils.Clock, loc *time.Location) *Aggregator {
	return &Aggregator{Clock: clock, Location: loc}
}

type Summary struct {
	Date            string `json:"date"`
	TotalPersonnel  int64  `json:"totalPersonnel"`
	ActivePersonnel int64  `json:"activePersonnel"`
	Present         int    `json:"present"`
	Late            int    `json:"late"`
	EarlyLeave      int    `json:"earlyLeave"`
	Absent          int    `json:"absent"`
	OnLeave         int64  `json:"onLeave"`
	PendingLeaves   int64  `json:"pendingLeaves"`
	ActiveScreens   int64  `json:"activeScreens"`
	PairedScreens   int64  `json:"pairedScreens"`
	LiveTokens      int64  `json:"liveTokens"`
}

type TrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
}

func (a *Aggregator) today() string {
	return utils.DateKey(a.Clock.Now(), a.Location)
}

func personnelScope(db *gorm.DB, branchID *uint) *gorm.DB {
	query := db.Model(&model.Personnel{})
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	return query
}

// firstCycles returns each person's first record per day in [from, to].
func firstCycles(db *gorm.DB, from, to string, branchID *uint) ([]model.AttendanceRecord, error) {
	query := db.Where("date >= ? AND date <= ? AND cycle = ?", from, to, 1)
	if branchID != nil {
		query = query.Where("personnel_id IN (?)", personnelScope(db, branchID).Select("id"))
	}
	var records []model.AttendanceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Summary rolls up one day; date defaults to today.
func (a *Aggregator) Summary(db *gorm.DB, date string, branchID *uint) (*Summary, error) {
	if date == "" {
		date = a.today()
	} else if _, err := time.Parse(utils.DateLayout, date); err != nil {
		return nil, core.Validation("date", "Tarih YYYY-AA-GG biçiminde olmalı")
	}

	s := &Summary{Date: date}
	if err := personnelScope(db, branchID).Count(&s.TotalPersonnel).Error; err != nil {
		return nil, err
	}
	if err := personnelScope(db, branchID).Where("active = ?", true).Count(&s.ActivePersonnel).Error; err != nil {
		return nil, err
	}

	records, err := firstCycles(db, date, date, branchID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		switch r.Status {
		case model.AttendanceLate:
			s.Late++
		case model.AttendanceEarlyLeave:
			s.EarlyLeave++
		default:
			s.Present++
		}
	}

	activeIDs := personnelScope(db, branchID).Where("active = ?", true).Select("id")
	if err := db.Model(&model.LeaveRequest{}).
		Where("status = ? AND start_date <= ? AND end_date >= ?", model.LeaveApproved, date, date).
		Where("personnel_id IN (?)", activeIDs).
		Distinct("personnel_id").
		Count(&s.OnLeave).Error; err != nil {
		return nil, err
	}

	s.Absent = max(int(s.ActivePersonnel)-len(records)-int(s.OnLeave), 0)

	pending := db.Model(&model.LeaveRequest{}).Where("status = ?", model.LeavePending)
	if branchID != nil {
		pending = pending.Where("personnel_id IN (?)", personnelScope(db, branchID).Select("id"))
	}
	if err := pending.Count(&s.PendingLeaves).Error; err != nil {
		return nil, err
	}

	screens := func() *gorm.DB {
		q := db.Model(&model.QRScreen{}).Where("active = ?", true)
		if branchID != nil {
			q = q.Where("branch_id = ?", *branchID)
		}
		return q
	}
	if err := screens().Count(&s.ActiveScreens).Error; err != nil {
		return nil, err
	}
	if err := screens().Where("device_id IS NOT NULL").Count(&s.PairedScreens).Error; err != nil {
		return nil, err
	}

	tokens := db.Model(&model.QRToken{}).Where("active = ? AND expires_at > ?", true, a.Clock.Now())
	if branchID != nil {
		tokens = tokens.Where("branch_id = ?", *branchID)
	}
	if err := tokens.Count(&s.LiveTokens).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// Trend returns per-day present and late counts for the last days days,
// oldest first, including today.
func (a *Aggregator) Trend(db *gorm.DB, days int, branchID *uint) ([]TrendPoint, error) {
	if days <= 0 || days > MaxTrendDays {
		return nil, core.Validation("days", "Gün sayısı 1 ile 90 arasında olmalı")
	}

	end := a.Clock.Now().In(a.Location)
	start := end.AddDate(0, 0, -(days - 1))
	from, to := start.Format(utils.DateLayout), end.Format(utils.DateLayout)

	records, err := firstCycles(db, from, to, branchID)
	if err != nil {
		return nil, err
	}
	byDate := utils.GroupBy(records, func(r model.AttendanceRecord) string { return r.Date })

	points := make([]TrendPoint, 0, days)
	for d := 0; d < days; d++ {
		key := start.AddDate(0, 0, d).Format(utils.DateLayout)
		p := TrendPoint{Date: key}
		for _, r := range byDate[key] {
			if r.Status == model.AttendanceLate {
				p.Late++
			} else {
				p.Present++
			}
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

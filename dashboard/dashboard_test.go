package dashboard

import (
	"testing"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/core/coretest"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func record(t *testing.T, db *gorm.DB, personnelID uint, date string, cycle int, status model.AttendanceStatus) {
	t.Helper()
	require.NoError(t, db.Create(&model.AttendanceRecord{PersonnelID: personnelID, Date: date, Cycle: cycle, Status: status}).Error)
}

func TestSummary(t *testing.T) {
	db := coretest.NewDB(t)
	clock := utils.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	agg := NewAggregator(clock, utils.IstanbulTZ)

	branch := coretest.CreateBranch(t, db, "Merkez")
	other := coretest.CreateBranch(t, db, "Şube 2")
	inBranch := func(p *model.Personnel) { p.BranchID = &branch.ID }

	a := coretest.CreatePersonnel(t, db, "A", "A", inBranch)
	b := coretest.CreatePersonnel(t, db, "B", "B", inBranch)
	c := coretest.CreatePersonnel(t, db, "C", "C", inBranch)
	coretest.CreatePersonnel(t, db, "D", "D", inBranch)
	coretest.CreatePersonnel(t, db, "E", "E", func(p *model.Personnel) { p.BranchID = &branch.ID; p.Active = false })
	x := coretest.CreatePersonnel(t, db, "X", "X", func(p *model.Personnel) { p.BranchID = &other.ID })

	record(t, db, a.ID, "2025-03-10", 1, model.AttendancePresent)
	record(t, db, a.ID, "2025-03-10", 2, model.AttendanceLate)
	record(t, db, b.ID, "2025-03-10", 1, model.AttendanceLate)
	record(t, db, x.ID, "2025-03-10", 1, model.AttendancePresent)
	record(t, db, a.ID, "2025-03-09", 1, model.AttendancePresent)

	require.NoError(t, db.Create(&model.LeaveRequest{PersonnelID: c.ID, Type: model.LeaveAnnual, StartDate: "2025-03-09", EndDate: "2025-03-11", TotalDays: 3, Status: model.LeaveApproved}).Error)
	require.NoError(t, db.Create(&model.LeaveRequest{PersonnelID: a.ID, Type: model.LeaveAnnual, StartDate: "2025-04-01", EndDate: "2025-04-01", TotalDays: 1, Status: model.LeavePending}).Error)

	coretest.CreateScreen(t, db, "S1", branch.ID, "ABC123")
	device := "D1"
	require.NoError(t, db.Model(&model.QRScreen{}).Where("screen_id = ?", "S1").Update("device_id", device).Error)
	coretest.CreateScreen(t, db, "S2", other.ID, "ABC124")
	require.NoError(t, db.Create(&model.QRToken{Code: "t1", BranchID: branch.ID, ExpiresAt: clock.Now().Add(time.Minute), Active: true}).Error)
	require.NoError(t, db.Create(&model.QRToken{Code: "t2", BranchID: branch.ID, ExpiresAt: clock.Now().Add(-time.Minute), Active: true}).Error)

	s, err := agg.Summary(db, "", &branch.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", s.Date)
	assert.EqualValues(t, 5, s.TotalPersonnel)
	assert.EqualValues(t, 4, s.ActivePersonnel)
	assert.Equal(t, 1, s.Present)
	assert.Equal(t, 1, s.Late)
	assert.EqualValues(t, 1, s.OnLeave)
	assert.Equal(t, 1, s.Absent)
	assert.EqualValues(t, 1, s.PendingLeaves)
	assert.EqualValues(t, 1, s.ActiveScreens)
	assert.EqualValues(t, 1, s.PairedScreens)
	assert.EqualValues(t, 1, s.LiveTokens)

	all, err := agg.Summary(db, "2025-03-10", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Present)
	assert.EqualValues(t, 2, all.ActiveScreens)

	_, err = agg.Summary(db, "10/03/2025", nil)
	assert.True(t, core.IsKind(err, core.KindValidation))
}

func TestTrend(t *testing.T) {
	db := coretest.NewDB(t)
	clock := utils.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	agg := NewAggregator(clock, utils.IstanbulTZ)
	p := coretest.CreatePersonnel(t, db, "A", "A", nil)
	q := coretest.CreatePersonnel(t, db, "B", "B", nil)

	record(t, db, p.ID, "2025-03-08", 1, model.AttendancePresent)
	record(t, db, p.ID, "2025-03-10", 1, model.AttendanceLate)
	record(t, db, q.ID, "2025-03-10", 1, model.AttendanceEarlyLeave)
	record(t, db, q.ID, "2025-03-01", 1, model.AttendancePresent)

	points, err := agg.Trend(db, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Date: "2025-03-08", Present: 1},
		{Date: "2025-03-09"},
		{Date: "2025-03-10", Present: 1, Late: 1},
	}, points)

	_, err = agg.Trend(db, 0, nil)
	assert.True(t, core.IsKind(err, core.KindValidation))
}

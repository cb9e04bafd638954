package attendance

import (
	"fmt"
	"time"

	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
)

const (
	DefaultLateThreshold       = 10 * time.Minute
	DefaultEarlyLeaveThreshold = 10 * time.Minute
)

// Rules classifies scans against the personnel's shift. Shift times are wall
// clock strings interpreted in Location.
type Rules struct {
	LateThreshold       time.Duration
	EarlyLeaveThreshold time.Duration
	Location            *time.Location
}

func DefaultRules() Rules {
	return Rules{
		LateThreshold:       DefaultLateThreshold,
		EarlyLeaveThreshold: DefaultEarlyLeaveThreshold,
		Location:            utils.IstanbulTZ,
	}
}

// ShiftWindow holds the defined start and end of one shift occurrence.
type ShiftWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor places the shift on the calendar day of at (in the rules'
// location). A shift whose end is before its start finishes the next day.
func (r Rules) WindowFor(at time.Time, shift model.Shift) (ShiftWindow, error) {
	local := at.In(r.location())
	dateBase := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	start, err := utils.ParseTimeOnDate(dateBase, shift.StartTime)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("invalid shift start time %s: %w", shift.StartTime, err)
	}
	end, err := utils.ParseTimeOnDate(dateBase, shift.EndTime)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("invalid shift end time %s: %w", shift.EndTime, err)
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return ShiftWindow{Start: start, End: end}, nil
}

// ApplyCheckInRule: arriving more than threshold after the defined start is late.
func ApplyCheckInRule(actual, defined time.Time, threshold time.Duration) model.AttendanceStatus {
	if actual.Sub(defined) > threshold {
		return model.AttendanceLate
	}
	return model.AttendancePresent
}

// ApplyCheckOutRule: leaving more than threshold before the defined end is an early leave.
func ApplyCheckOutRule(actual, defined time.Time, threshold time.Duration) bool {
	return defined.Sub(actual) > threshold
}

// CheckInStatus returns present or late. Personnel without a shift are
// always present.
func (r Rules) CheckInStatus(actual time.Time, shift *model.Shift) (model.AttendanceStatus, error) {
	if shift == nil {
		return model.AttendancePresent, nil
	}
	window, err := r.WindowFor(actual, *shift)
	if err != nil {
		return model.AttendancePresent, err
	}
	return ApplyCheckInRule(actual, window.Start, r.LateThreshold), nil
}

// CheckOutStatus keeps the check-in status unless the person left early.
// The window is anchored on the check-in so night shifts resolve correctly.
func (r Rules) CheckOutStatus(checkIn, checkOut time.Time, current model.AttendanceStatus, shift *model.Shift) (model.AttendanceStatus, error) {
	if shift == nil {
		return current, nil
	}
	window, err := r.WindowFor(checkIn, *shift)
	if err != nil {
		return current, err
	}
	if ApplyCheckOutRule(checkOut, window.End, r.EarlyLeaveThreshold) {
		return model.AttendanceEarlyLeave, nil
	}
	return current, nil
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return utils.IstanbulTZ
	}
	return r.Location
}

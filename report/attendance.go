// Package report renders attendance exports.
package report

import (
	"fmt"
	"io"
	"time"

	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/xuri/excelize/v2"
)

const (
	AttendanceSheet = "Yoklama"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var statusLabels = map[model.AttendanceStatus]string{
	model.AttendancePresent:    "Geldi",
	model.AttendanceAbsent:     "Gelmedi",
	model.AttendanceLate:       "Geç kaldı",
	model.AttendanceEarlyLeave: "Erken çıktı",
}

var attendanceHeaders = []interface{}{
	"Tarih", "Personel Kodu", "Ad Soyad", "Döngü", "Giriş", "Çıkış", "Durum", "Ekran", "Konum",
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}

// AttendanceWorkbook lays records out one per row. Records should have
// Personnel preloaded; times are shown in loc.
func AttendanceWorkbook(records []model.AttendanceRecord, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", AttendanceSheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(AttendanceSheet, "A1", &attendanceHeaders); err != nil {
		f.Close()
		return nil, err
	}
	f.SetRowStyle(AttendanceSheet, 1, 1, header)
	f.SetColWidth(AttendanceSheet, "A", "A", 12)
	f.SetColWidth(AttendanceSheet, "C", "C", 28)
	f.SetColWidth(AttendanceSheet, "I", "I", 24)

	for i, r := range records {
		code, name := "", ""
		if r.Personnel != nil {
			code, name = r.Personnel.Code, r.Personnel.FullName()
		}
		row := []interface{}{
			r.Date,
			code,
			name,
			r.Cycle,
			clock(r.CheckInTime, loc),
			clock(r.CheckOutTime, loc),
			statusLabels[r.Status],
			utils.Deref(r.QRScreenID),
			r.Location,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(AttendanceSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if len(records) > 0 {
		f.AutoFilter(AttendanceSheet, fmt.Sprintf("A1:I%d", len(records)+1), nil)
	}
	return f, nil
}

// WriteAttendance renders the workbook straight to w.
func WriteAttendance(w io.Writer, records []model.AttendanceRecord, loc *time.Location) error {
	f, err := AttendanceWorkbook(records, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func AttendanceFilename(from, to string) string {
	return fmt.Sprintf("yoklama_%s_%s.xlsx", from, to)
}

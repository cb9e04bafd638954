package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"axiapac.com/personnel/model"
)

// Uploader stores a finished report.
type Uploader interface {
	WriteFile(ctx context.Context, key string, body []byte, contentType string) error
}

type Archiver struct {
	Uploader Uploader
	Location *time.Location
}

// Archive renders the records and uploads them under reports/attendance/.
// It returns the object key.
func (a *Archiver) Archive(ctx context.Context, records []model.AttendanceRecord, from, to string) (string, error) {
	var buf bytes.Buffer
	if err := WriteAttendance(&buf, records, a.Location); err != nil {
		return "", err
	}
	key := fmt.Sprintf("reports/attendance/%s", AttendanceFilename(from, to))
	if err := a.Uploader.WriteFile(ctx, key, buf.Bytes(), ContentTypeXLSX); err != nil {
		return "", err
	}
	return key, nil
}

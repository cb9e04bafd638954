package app

import (
	"context"
	"testing"
	"time"

	"axiapac.com/personnel/attendance"
	"axiapac.com/personnel/config"
	"axiapac.com/personnel/infrastructure/communication"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopUploader struct{}

func (nopUploader) WriteFile(context.Context, string, []byte, string) error { return nil }

func TestNewCollaboratorsWithoutAWS(t *testing.T) {
	cfg := config.Defaults()
	collab, err := NewCollaborators(t.Context(), &cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.IsType(t, communication.LogAlerter{}, collab.Alerter)
	assert.IsType(t, communication.LogMailer{}, collab.Mailer)
	assert.IsType(t, communication.LogSMSSender{}, collab.SMS)
	assert.Nil(t, collab.Uploader)
}

func TestNewServices(t *testing.T) {
	cfg := config.Defaults()
	cfg.AttendanceRepeatPolicy = "reject"
	clock := utils.NewFakeClock(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC))

	s := NewServices(&cfg, clock, LogCollaborators(zerolog.Nop()), zerolog.Nop())
	assert.Same(t, s.Issuer, s.Pairing.Issuer)
	assert.Same(t, s.Issuer, s.Recorder.Issuer)
	assert.Equal(t, attendance.RepeatReject, s.Recorder.Policy)
	assert.Equal(t, 5*time.Minute, s.Rotator.TTL)
	assert.Equal(t, 30*time.Second, s.Rotator.Interval)
	assert.NotNil(t, s.Rotator.OnFailure)
	assert.Nil(t, s.Archiver)

	collab := LogCollaborators(zerolog.Nop())
	collab.Uploader = nopUploader{}
	s = NewServices(&cfg, clock, collab, zerolog.Nop())
	require.NotNil(t, s.Archiver)
	assert.Equal(t, "Europe/Istanbul", s.Archiver.Location.String())
}

package main

import (
	"testing"
	"time"

	"axiapac.com/personnel/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateEventTTL(t *testing.T) {
	cfg := config.Defaults()

	tests := []struct {
		name    string
		seconds int
		want    time.Duration
		wantErr bool
	}{
		{"configured", 0, 5 * time.Minute, false},
		{"override", 60, time.Minute, false},
		{"equal to interval", 30, 30 * time.Second, false},
		{"shorter than interval", 10, 0, true},
		{"negative", -5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, err := RotateEvent{TTLSeconds: tt.seconds}.TTL(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ttl)
		})
	}
}

func TestRotateRejectsShortTTLBeforeConnecting(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBType = "unknown"

	_, err := Rotate(t.Context(), &cfg, RotateEvent{TTLSeconds: 5}, zerolog.Nop())
	assert.ErrorContains(t, err, "ttlSeconds")
}

package qr

import (
	"context"
	"time"

	"axiapac.com/personnel/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Rotator keeps a fresh token on every active screen. Rotation is purely
// time driven; scanning a token does not trigger a new one.
type Rotator struct {
	Issuer   *Issuer
	TTL      time.Duration
	Interval time.Duration
	Log      zerolog.Logger

	// OnFailure, when set, is told about every tick that failed to rotate.
	OnFailure func(ctx context.Context, err error)
}

func NewRotator(issuer *Issuer, ttl, interval time.Duration, log zerolog.Logger) *Rotator {
	return &Rotator{Issuer: issuer, TTL: ttl, Interval: interval, Log: log}
}

// due reports whether the screen needs a new token: none is live, the current
// one has been on display for a full interval, or it expires within one. The
// age check allows a tenth of an interval of slack, since the previous token
// was stamped a little after the tick that issued it.
func (r *Rotator) due(current *model.QRToken, now time.Time) bool {
	if current == nil {
		return true
	}
	if now.Sub(current.CreatedAt) >= r.Interval-r.Interval/10 {
		return true
	}
	return current.ExpiresAt.Sub(now) <= r.Interval
}

// RotateOnce issues tokens for the active screens that are due and returns
// how many were issued. A failing screen does not stop the others.
func (r *Rotator) RotateOnce(db *gorm.DB) (int, error) {
	var screens []model.QRScreen
	if err := db.Where("active = ?", true).Find(&screens).Error; err != nil {
		return 0, err
	}

	now := r.Issuer.Clock.Now()
	issued := 0
	var firstErr error
	for _, s := range screens {
		current, err := r.Issuer.CurrentForScreen(db, s.ScreenID)
		if err == nil && !r.due(current, now) {
			continue
		}
		if err == nil {
			screenID := s.ScreenID
			_, err = r.Issuer.Issue(db, IssueRequest{BranchID: s.BranchID, ScreenID: &screenID, TTL: r.TTL})
		}
		if err != nil {
			r.Log.Error().Err(err).Str("screen", s.ScreenID).Msg("token rotation failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		issued++
	}
	return issued, firstErr
}

// Run rotates on every interval tick until ctx is cancelled.
func (r *Rotator) Run(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(ctx, db)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, db)
		}
	}
}

func (r *Rotator) tick(ctx context.Context, db *gorm.DB) {
	issued, err := r.RotateOnce(db.WithContext(ctx))
	if err != nil {
		if r.OnFailure != nil {
			r.OnFailure(ctx, err)
		}
		return
	}
	if issued > 0 {
		r.Log.Debug().Int("issued", issued).Msg("rotated qr tokens")
	}
}

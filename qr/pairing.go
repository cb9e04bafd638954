package qr

import (
	"strings"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"gorm.io/gorm"
)

// Pairing binds a kiosk display to a screen after it proves knowledge of the
// access code, and answers the kiosk's revalidation polls.
//
// There is no attempt limit on Pair; a wrong code just fails.
type Pairing struct {
	Registry *Registry
	Issuer   *Issuer
	Clock    utils.Clock
}

func NewPairing(registry *Registry, issuer *Issuer, clock utils.Clock) *Pairing {
	return &Pairing{Registry: registry, Issuer: issuer, Clock: clock}
}

type PairingResult struct {
	ScreenID     string    `json:"screenId"`
	DeviceID     string    `json:"deviceId"`
	AuthorizedAt time.Time `json:"authorizedAt"`
}

type Status struct {
	ScreenID string `json:"screenId"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Paired   bool   `json:"paired"`
}

// Pair checks the submitted code case-insensitively and, on a match, makes
// deviceID the screen's bound device. A later successful Pair from another
// device silently displaces this one. An inactive screen answers Conflict so
// the kiosk can tell it apart from a wrong code.
func (p *Pairing) Pair(db *gorm.DB, screenID, accessCode, deviceID string) (*PairingResult, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, core.Validation("deviceId", "Cihaz kimliği zorunludur")
	}

	screen, err := p.Registry.Get(db, screenID)
	if err != nil {
		return nil, err
	}
	if !screen.Active {
		return nil, core.Conflict("Bu ekran aktif değil")
	}

	submitted := utils.NormalizeCode(accessCode)
	if submitted == "" || submitted != utils.NormalizeCode(screen.AccessCode) {
		return nil, core.Forbidden("Erişim kodu hatalı")
	}

	now := p.Clock.Now()
	if err := db.Model(screen).Updates(map[string]interface{}{
		"device_id":        deviceID,
		"last_activity_at": now,
		"updated_at":       now,
	}).Error; err != nil {
		return nil, err
	}

	return &PairingResult{ScreenID: screen.ScreenID, DeviceID: deviceID, AuthorizedAt: now}, nil
}

// Status reports whether deviceID is still the bound device of an active screen.
func (p *Pairing) Status(db *gorm.DB, screenID, deviceID string) (*Status, error) {
	screen, err := p.Registry.Get(db, screenID)
	if err != nil {
		return nil, err
	}
	return &Status{
		ScreenID: screen.ScreenID,
		Name:     screen.Name,
		Active:   screen.Active,
		Paired:   screen.Active && screen.BoundTo(strings.TrimSpace(deviceID)),
	}, nil
}

// DisplayToken returns the token a paired kiosk should show. An inactive
// screen or a device that is no longer bound gets an authorization error even
// when a valid token exists.
func (p *Pairing) DisplayToken(db *gorm.DB, screenID, deviceID string) (*model.QRToken, error) {
	screen, err := p.Registry.Get(db, screenID)
	if err != nil {
		return nil, err
	}
	if !screen.Active {
		return nil, core.Forbidden("Bu ekran aktif değil")
	}
	if !screen.BoundTo(strings.TrimSpace(deviceID)) {
		return nil, core.Forbidden("Bu cihaz ekrana bağlı değil")
	}

	if err := db.Model(screen).UpdateColumn("last_activity_at", p.Clock.Now()).Error; err != nil {
		return nil, err
	}

	token, err := p.Issuer.CurrentForScreen(db, screenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, core.NotFound("Bu ekran için geçerli QR kod yok")
	}
	return token, nil
}

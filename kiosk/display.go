// Package kiosk is the display side of the QR attendance kiosk: it pairs a
// device with a screen, keeps revalidating that pairing and fetches the live
// token to show.
package kiosk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
)

type State int

const (
	StateUnpaired State = iota
	StateAwaitingCode
	StatePaired
	StateRevoked
)

func (s State) String() string {
	switch s {
	case StateAwaitingCode:
		return "awaiting_code"
	case StatePaired:
		return "paired"
	case StateRevoked:
		return "revoked"
	}
	return "unpaired"
}

const (
	DefaultRevalidateInterval = 5 * time.Second
	DefaultTokenPollInterval  = 2 * time.Second
)

var (
	ErrWrongCode      = errors.New("erişim kodu hatalı")
	ErrScreenInactive = errors.New("bu ekran aktif değil")
	ErrUnknownScreen  = errors.New("ekran bulunamadı")
	ErrNotPaired      = errors.New("cihaz ekrana bağlı değil")
	ErrWrongState     = errors.New("işlem bu durumda yapılamaz")
)

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// revokes reports whether a failed call means the server no longer accepts
// this device for the screen: the binding moved (403) or the screen is gone
// (404). Anything else is transient.
func revokes(err error) bool {
	switch statusOf(err) {
	case http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// Display drives one kiosk screen through Unpaired, AwaitingCode, Paired and
// Revoked. Revocation is noticed only by polling.
type Display struct {
	ScreenID string
	API      API
	Store    Store
	Clock    utils.Clock
	Log      zerolog.Logger

	RevalidateInterval time.Duration
	TokenPollInterval  time.Duration

	// OnChange, when set, observes every transition.
	OnChange func(from, to State)

	mu       sync.Mutex
	state    State
	deviceID string
}

func NewDisplay(screenID string, api API, store Store, clock utils.Clock, log zerolog.Logger) *Display {
	return &Display{
		ScreenID:           screenID,
		API:                api,
		Store:              store,
		Clock:              clock,
		Log:                log.With().Str("screen", screenID).Logger(),
		RevalidateInterval: DefaultRevalidateInterval,
		TokenPollInterval:  DefaultTokenPollInterval,
	}
}

func (d *Display) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Display) DeviceID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deviceID
}

func (d *Display) transition(to State) {
	d.mu.Lock()
	from := d.state
	d.state = to
	d.mu.Unlock()

	if from == to {
		return
	}
	d.Log.Info().Str("from", from.String()).Str("to", to.String()).Msg("kiosk state changed")
	if d.OnChange != nil {
		d.OnChange(from, to)
	}
}

// Start loads the device identity and any cached pairing. A cached pairing
// that still checks out resumes as Paired; anything else ends in AwaitingCode.
// When the server cannot be reached the cached pairing is trusted until the
// first revalidation.
func (d *Display) Start(ctx context.Context) (State, error) {
	deviceID, err := d.Store.DeviceID()
	if err != nil {
		return d.State(), err
	}
	d.mu.Lock()
	d.deviceID = deviceID
	d.mu.Unlock()

	record, err := d.Store.Pairing(d.ScreenID)
	if err != nil {
		return d.State(), err
	}
	if record != nil && record.DeviceID == deviceID {
		status, err := d.API.Status(ctx, d.ScreenID, deviceID)
		switch {
		case err != nil && !revokes(err):
			d.Log.Warn().Err(err).Msg("server unreachable, resuming cached pairing")
			d.transition(StatePaired)
			return StatePaired, nil
		case err == nil && status.Active && status.Paired:
			d.transition(StatePaired)
			return StatePaired, nil
		}
	}

	if record != nil {
		if err := d.Store.ClearPairing(d.ScreenID); err != nil {
			return d.State(), err
		}
	}
	d.transition(StateAwaitingCode)
	return StateAwaitingCode, nil
}

// SubmitCode tries to pair with the entered access code. A rejected code
// leaves the display in AwaitingCode and returns ErrWrongCode.
func (d *Display) SubmitCode(ctx context.Context, code string) error {
	if d.State() != StateAwaitingCode {
		return ErrWrongState
	}

	code = utils.NormalizeCode(code)
	if code == "" {
		return ErrWrongCode
	}

	deviceID := d.DeviceID()
	if err := d.API.Pair(ctx, d.ScreenID, code, deviceID); err != nil {
		switch statusOf(err) {
		case http.StatusForbidden:
			return ErrWrongCode
		case http.StatusConflict:
			return ErrScreenInactive
		case http.StatusNotFound:
			return ErrUnknownScreen
		}
		return err
	}

	if err := d.Store.SavePairing(PairingRecord{
		ScreenID:     d.ScreenID,
		DeviceID:     deviceID,
		AuthorizedAt: d.Clock.Now(),
	}); err != nil {
		return err
	}
	d.transition(StatePaired)
	return nil
}

// Revalidate checks a Paired display against the server. A missing local
// record, a deleted or inactive screen or another bound device revokes the
// pairing and sends the display back to the code prompt. Transport failures
// and server errors keep the current state.
func (d *Display) Revalidate(ctx context.Context) (State, error) {
	if d.State() != StatePaired {
		return d.State(), nil
	}

	record, err := d.Store.Pairing(d.ScreenID)
	if err != nil {
		return d.State(), err
	}
	if record == nil || record.DeviceID != d.DeviceID() {
		return d.revoke()
	}

	status, err := d.API.Status(ctx, d.ScreenID, d.DeviceID())
	if err != nil {
		if revokes(err) {
			return d.revoke()
		}
		return d.State(), err
	}
	if !status.Active || !status.Paired {
		return d.revoke()
	}
	return StatePaired, nil
}

func (d *Display) revoke() (State, error) {
	d.transition(StateRevoked)
	if err := d.Store.ClearPairing(d.ScreenID); err != nil {
		return StateRevoked, err
	}
	d.transition(StateUnpaired)
	d.transition(StateAwaitingCode)
	return StateAwaitingCode, nil
}

// CurrentToken fetches the token to show. It returns nil when the server has
// no live token yet. A 403 is treated as revocation; a 404 is checked against
// the screen status, since a deleted screen answers 404 as well.
func (d *Display) CurrentToken(ctx context.Context) (*DisplayToken, error) {
	if d.State() != StatePaired {
		return nil, ErrNotPaired
	}

	token, err := d.API.Token(ctx, d.ScreenID, d.DeviceID())
	if err != nil {
		switch statusOf(err) {
		case http.StatusNotFound:
			state, rerr := d.Revalidate(ctx)
			if rerr != nil {
				return nil, rerr
			}
			if state != StatePaired {
				return nil, ErrNotPaired
			}
			return nil, nil
		case http.StatusForbidden:
			if _, rerr := d.revoke(); rerr != nil {
				return nil, rerr
			}
			return nil, ErrNotPaired
		}
		return nil, err
	}

	// never show a code the server says has already expired
	if !d.Clock.Now().Before(token.ExpiresAt) {
		return nil, nil
	}
	return token, nil
}

// Prompt asks the operator for an access code. previous is why the last
// submission failed, or nil.
type Prompt func(ctx context.Context, previous error) (string, error)

// Render shows a token, or clears the screen when token is nil.
type Render func(token *DisplayToken)

// Run drives the display until ctx is done.
func (d *Display) Run(ctx context.Context, prompt Prompt, render Render) error {
	if _, err := d.Start(ctx); err != nil {
		return err
	}

	revalidate := time.NewTicker(d.RevalidateInterval)
	defer revalidate.Stop()
	poll := time.NewTicker(d.TokenPollInterval)
	defer poll.Stop()

	var shown string
	var rejected error
	for {
		if ctx.Err() != nil {
			return nil
		}

		if d.State() == StateAwaitingCode {
			render(nil)
			shown = ""
			code, err := prompt(ctx, rejected)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			rejected = d.SubmitCode(ctx, code)
			switch {
			case rejected == nil:
			case errors.Is(rejected, ErrWrongCode):
				d.Log.Info().Msg("wrong access code")
			case errors.Is(rejected, ErrScreenInactive), errors.Is(rejected, ErrUnknownScreen):
				d.Log.Warn().Err(rejected).Msg("screen cannot be paired")
			default:
				d.Log.Warn().Err(rejected).Msg("pairing failed")
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-revalidate.C:
			if _, err := d.Revalidate(ctx); err != nil {
				d.Log.Warn().Err(err).Msg("revalidation failed")
			}
		case <-poll.C:
			token, err := d.CurrentToken(ctx)
			if err != nil {
				if !errors.Is(err, ErrNotPaired) {
					d.Log.Warn().Err(err).Msg("token poll failed")
				}
				continue
			}
			code := ""
			if token != nil {
				code = token.Code
			}
			if code != shown {
				render(token)
				shown = code
			}
		}
	}
}

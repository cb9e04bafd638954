package qr

import (
	"testing"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/core/coretest"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var start = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	clock    *utils.FakeClock
	issuer   *Issuer
	registry *Registry
	pairing  *Pairing
	branch   model.Branch
}

func newFixture(t *testing.T) *fixture {
	db := coretest.NewDB(t)
	clock := utils.NewFakeClock(start)
	issuer := NewIssuer(clock)
	registry := NewRegistry(clock)
	return &fixture{
		db:       db,
		clock:    clock,
		issuer:   issuer,
		registry: registry,
		pairing:  NewPairing(registry, issuer, clock),
		branch:   coretest.CreateBranch(t, db, "Merkez"),
	}
}

func (f *fixture) issue(t *testing.T, screenID string, ttl time.Duration) *model.QRToken {
	t.Helper()
	token, err := f.issuer.Issue(f.db, IssueRequest{BranchID: f.branch.ID, ScreenID: &screenID, TTL: ttl})
	require.NoError(t, err)
	return token
}

func TestIssuerCurrentForScreen(t *testing.T) {
	t.Run("Newest live token wins", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")

		first := f.issue(t, "S1", 5*time.Minute)
		f.clock.Advance(30 * time.Second)
		second := f.issue(t, "S1", 5*time.Minute)

		current, err := f.issuer.CurrentForScreen(f.db, "S1")
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, second.Code, current.Code)
		assert.NotEqual(t, first.Code, current.Code)
	})

	t.Run("Expired token is not returned", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		f.issue(t, "S1", time.Minute)

		f.clock.Advance(time.Minute)

		current, err := f.issuer.CurrentForScreen(f.db, "S1")
		require.NoError(t, err)
		assert.Nil(t, current)
	})

	t.Run("Inactive screen suppresses display", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		f.issue(t, "S1", 5*time.Minute)

		inactive := false
		_, err := f.registry.Update(f.db, "S1", ScreenUpdate{Active: &inactive})
		require.NoError(t, err)

		current, err := f.issuer.CurrentForScreen(f.db, "S1")
		require.NoError(t, err)
		assert.Nil(t, current)
	})

	t.Run("Unknown screen", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.issuer.CurrentForScreen(f.db, "nope")
		assert.True(t, core.IsKind(err, core.KindNotFound))
	})
}

func TestIssuerValidation(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	other := coretest.CreateBranch(t, f.db, "Şube 2")

	_, err := f.issuer.Issue(f.db, IssueRequest{BranchID: f.branch.ID, TTL: 0})
	assert.True(t, core.IsKind(err, core.KindValidation))

	screenID := "S1"
	_, err = f.issuer.Issue(f.db, IssueRequest{BranchID: other.ID, ScreenID: &screenID, TTL: time.Minute})
	assert.True(t, core.IsKind(err, core.KindValidation))

	token, err := f.issuer.Issue(f.db, IssueRequest{ScreenID: &screenID, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, f.branch.ID, token.BranchID)
}

func TestInvalidateAll(t *testing.T) {
	f := newFixture(t)
	other := coretest.CreateBranch(t, f.db, "Şube 2")
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	coretest.CreateScreen(t, f.db, "S2", other.ID, "XYZ789")
	f.issue(t, "S1", 5*time.Minute)
	s2 := "S2"
	_, err := f.issuer.Issue(f.db, IssueRequest{BranchID: other.ID, ScreenID: &s2, TTL: 5 * time.Minute})
	require.NoError(t, err)

	n, err := f.issuer.InvalidateAll(f.db, &f.branch.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	current, err := f.issuer.CurrentForScreen(f.db, "S1")
	require.NoError(t, err)
	assert.Nil(t, current)

	remaining, err := f.issuer.ListActive(f.db, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].BranchID)

	// second run is a no-op
	_, err = f.issuer.InvalidateAll(f.db, nil)
	require.NoError(t, err)
	n, err = f.issuer.InvalidateAll(f.db, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	var total int64
	require.NoError(t, f.db.Model(&model.QRToken{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestPairingHappyPath(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	issued := f.issue(t, "S1", 5*time.Minute)

	res, err := f.pairing.Pair(f.db, "S1", " abc123 ", "D1")
	require.NoError(t, err)
	assert.Equal(t, "D1", res.DeviceID)

	screen, err := f.registry.Get(f.db, "S1")
	require.NoError(t, err)
	require.NotNil(t, screen.DeviceID)
	assert.Equal(t, "D1", *screen.DeviceID)
	require.NotNil(t, screen.LastActivityAt)

	status, err := f.pairing.Status(f.db, "S1", "D1")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.True(t, status.Paired)

	token, err := f.pairing.DisplayToken(f.db, "S1", "D1")
	require.NoError(t, err)
	assert.Equal(t, issued.Code, token.Code)
}

func TestPairingWrongCode(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")

	_, err := f.pairing.Pair(f.db, "S1", "ABC124", "D1")
	assert.True(t, core.IsKind(err, core.KindAuthorization))

	_, err = f.pairing.Pair(f.db, "S1", "", "D1")
	assert.True(t, core.IsKind(err, core.KindAuthorization))

	inactive := false
	_, err = f.registry.Update(f.db, "S1", ScreenUpdate{Active: &inactive})
	require.NoError(t, err)
	_, err = f.pairing.Pair(f.db, "S1", "ABC123", "D1")
	assert.True(t, core.IsKind(err, core.KindConflict))

	screen, err := f.registry.Get(f.db, "S1")
	require.NoError(t, err)
	assert.Nil(t, screen.DeviceID)
}

func TestPairingLastWriteWins(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	f.issue(t, "S1", 5*time.Minute)

	_, err := f.pairing.Pair(f.db, "S1", "ABC123", "D1")
	require.NoError(t, err)
	_, err = f.pairing.Pair(f.db, "S1", "abc123", "D2")
	require.NoError(t, err)

	status, err := f.pairing.Status(f.db, "S1", "D1")
	require.NoError(t, err)
	assert.False(t, status.Paired)

	_, err = f.pairing.DisplayToken(f.db, "S1", "D1")
	assert.True(t, core.IsKind(err, core.KindAuthorization))

	_, err = f.pairing.DisplayToken(f.db, "S1", "D2")
	assert.NoError(t, err)
}

func TestPairingRevocation(t *testing.T) {
	t.Run("Unbind", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		f.issue(t, "S1", 5*time.Minute)
		_, err := f.pairing.Pair(f.db, "S1", "ABC123", "D1")
		require.NoError(t, err)

		_, err = f.registry.Unbind(f.db, "S1")
		require.NoError(t, err)

		status, err := f.pairing.Status(f.db, "S1", "D1")
		require.NoError(t, err)
		assert.False(t, status.Paired)
		_, err = f.pairing.DisplayToken(f.db, "S1", "D1")
		assert.True(t, core.IsKind(err, core.KindAuthorization))
	})

	t.Run("Deactivate", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		f.issue(t, "S1", 5*time.Minute)
		_, err := f.pairing.Pair(f.db, "S1", "ABC123", "D1")
		require.NoError(t, err)

		inactive := false
		_, err = f.registry.Update(f.db, "S1", ScreenUpdate{Active: &inactive})
		require.NoError(t, err)

		status, err := f.pairing.Status(f.db, "S1", "D1")
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.False(t, status.Paired)

		_, err = f.pairing.Pair(f.db, "S1", "ABC123", "D1")
		assert.True(t, core.IsKind(err, core.KindAuthorization))
	})

	t.Run("Access code change keeps binding", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		_, err := f.pairing.Pair(f.db, "S1", "ABC123", "D1")
		require.NoError(t, err)

		screen, err := f.registry.RegenerateAccessCode(f.db, "S1")
		require.NoError(t, err)
		assert.NotEqual(t, "ABC123", screen.AccessCode)

		status, err := f.pairing.Status(f.db, "S1", "D1")
		require.NoError(t, err)
		assert.True(t, status.Paired)

		_, err = f.pairing.Pair(f.db, "S1", "ABC123", "D3")
		assert.True(t, core.IsKind(err, core.KindAuthorization))
	})
}

func TestDisplayTokenWithoutLiveToken(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	_, err := f.pairing.Pair(f.db, "S1", "ABC123", "D1")
	require.NoError(t, err)

	_, err = f.pairing.DisplayToken(f.db, "S1", "D1")
	assert.True(t, core.IsKind(err, core.KindNotFound))
}

func TestRegistry(t *testing.T) {
	t.Run("Create generates code", func(t *testing.T) {
		f := newFixture(t)
		screen, err := f.registry.Create(f.db, CreateScreenRequest{ScreenID: "S1", BranchID: f.branch.ID, Active: true})
		require.NoError(t, err)
		assert.Len(t, screen.AccessCode, AccessCodeLength)
		assert.Equal(t, "S1", screen.Name)
		assert.True(t, screen.Active)

		_, err = f.registry.Create(f.db, CreateScreenRequest{ScreenID: "S1", BranchID: f.branch.ID})
		assert.True(t, core.IsKind(err, core.KindConflict))
	})

	t.Run("Create normalizes given code", func(t *testing.T) {
		f := newFixture(t)
		screen, err := f.registry.Create(f.db, CreateScreenRequest{ScreenID: "S1", BranchID: f.branch.ID, AccessCode: " abc123"})
		require.NoError(t, err)
		assert.Equal(t, "ABC123", screen.AccessCode)
		assert.False(t, screen.Active)
	})

	t.Run("Create unknown branch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.registry.Create(f.db, CreateScreenRequest{ScreenID: "S1", BranchID: 999})
		assert.True(t, core.IsKind(err, core.KindNotFound))
	})

	t.Run("Last screen cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		coretest.CreateScreen(t, f.db, "S2", f.branch.ID, "ABC124")

		require.NoError(t, f.registry.Delete(f.db, "S1"))
		err := f.registry.Delete(f.db, "S2")
		assert.True(t, core.IsKind(err, core.KindConflict))

		screens, err := f.registry.List(f.db, nil)
		require.NoError(t, err)
		assert.Len(t, screens, 1)
	})

	t.Run("Set device explicitly", func(t *testing.T) {
		f := newFixture(t)
		coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
		device := "D9"
		screen, err := f.registry.Update(f.db, "S1", ScreenUpdate{SetDeviceID: true, DeviceID: &device})
		require.NoError(t, err)
		assert.True(t, screen.BoundTo("D9"))
	})
}

func TestGenerateAccessCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		assert.Len(t, code, AccessCodeLength)
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.Equal(t, utils.NormalizeCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 40)
}

func TestRotator(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")
	coretest.CreateScreen(t, f.db, "S2", f.branch.ID, "ABC124")
	inactive := false
	_, err := f.registry.Update(f.db, "S2", ScreenUpdate{Active: &inactive})
	require.NoError(t, err)

	r := NewRotator(f.issuer, 5*time.Minute, 30*time.Second, zerolog.Nop())

	issued, err := r.RotateOnce(f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, issued)
	first, err := f.issuer.CurrentForScreen(f.db, "S1")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	issued, err = r.RotateOnce(f.db)
	require.NoError(t, err)
	assert.Equal(t, 0, issued)

	f.clock.Advance(20 * time.Second)
	issued, err = r.RotateOnce(f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, issued)

	second, err := f.issuer.CurrentForScreen(f.db, "S1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)

	// the displaced token still scans until it expires
	old, err := f.issuer.FindByCode(f.db, first.Code)
	require.NoError(t, err)
	assert.True(t, old.ValidAt(f.clock.Now()))
}

// steppingClock moves forward on every read, as wall time does between the
// tick and the insert that stamps a token.
type steppingClock struct {
	*utils.FakeClock
	step time.Duration
}

func (c steppingClock) Now() time.Time {
	c.Advance(c.step)
	return c.FakeClock.Now()
}

func TestRotatorKeepsCadence(t *testing.T) {
	f := newFixture(t)
	coretest.CreateScreen(t, f.db, "S1", f.branch.ID, "ABC123")

	clock := steppingClock{FakeClock: utils.NewFakeClock(start), step: 5 * time.Millisecond}
	interval := 30 * time.Second
	r := NewRotator(NewIssuer(clock), 5*time.Minute, interval, zerolog.Nop())

	for tick := 0; tick < 10; tick++ {
		clock.Set(start.Add(time.Duration(tick) * interval))
		issued, err := r.RotateOnce(f.db)
		require.NoError(t, err)
		assert.Equal(t, 1, issued, "tick %d", tick)
	}

	var count int64
	require.NoError(t, f.db.Model(&model.QRToken{}).Where("screen_id = ?", "S1").Count(&count).Error)
	assert.EqualValues(t, 10, count)
}

func TestEncode(t *testing.T) {
	png, err := EncodePNG("3f1c2d9e-token", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	text, err := EncodeTerminal("3f1c2d9e-token")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

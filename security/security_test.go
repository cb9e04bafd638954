package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestParsePermissions(t *testing.T) {
	set, unknown := ParsePermissions([]string{"qr.manage", " SMS.SEND ", "menu.reorder"})

	assert.True(t, set.Has(QRManage))
	assert.True(t, set.Has(SMSSend))
	assert.False(t, set.Has(LeaveApprove))
	assert.Equal(t, []string{"menu.reorder"}, unknown)
	assert.Equal(t, []string{"qr.manage", "sms.send"}, set.Strings())
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		perm      Permission
		expected  bool
	}{
		{name: "No principal", principal: nil, perm: QRView, expected: false},
		{name: "Admin has everything", principal: &Principal{Role: RoleAdmin}, perm: ScreensManage, expected: true},
		{name: "Staff records attendance", principal: &Principal{Role: RoleStaff}, perm: AttendanceRecord, expected: true},
		{name: "Staff cannot approve leave", principal: &Principal{Role: RoleStaff}, perm: LeaveApprove, expected: false},
		{name: "Explicit grant", principal: &Principal{Role: RoleStaff, Permissions: NewPermissionSet(SMSSend)}, perm: SMSSend, expected: true},
		{name: "Unknown role gets grants only", principal: &Principal{Role: "guest", Permissions: NewPermissionSet(QRView)}, perm: QRView, expected: true},
		{name: "Unknown role no grant", principal: &Principal{Role: "guest"}, perm: DashboardView, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allowed(tt.principal, tt.perm))
		})
	}
}

func TestAllPermissionsCoversEnumeration(t *testing.T) {
	all := AllPermissions()
	for p := Permission(0); p < permissionCount; p++ {
		assert.True(t, all.Has(p), p.String())
	}
	assert.False(t, all.Has(permissionCount))
}

func TestVerifyRoundTrip(t *testing.T) {
	id := uint(7)
	token, err := CreateIdentityToken("user-7", Identity{
		Name:        "Ayşe Yılmaz",
		Role:        "staff",
		Permissions: []string{"dashboard.view", "legacy.flag"},
		PersonnelID: &id,
	}, testSecret, time.Hour)
	require.NoError(t, err)

	var reported []string
	v := NewVerifier(testSecret)
	v.OnUnknownPermission = func(_ string, unknown []string) { reported = unknown }

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", p.Subject)
	assert.Equal(t, RoleStaff, p.Role)
	require.NotNil(t, p.PersonnelID)
	assert.Equal(t, uint(7), *p.PersonnelID)
	assert.True(t, Allowed(p, DashboardView))
	assert.Equal(t, []string{"legacy.flag"}, reported)
}

func TestVerifyRejects(t *testing.T) {
	expired, err := CreateIdentityToken("u", Identity{Role: "admin"}, testSecret, -time.Minute)
	require.NoError(t, err)
	otherKey, err := CreateIdentityToken("u", Identity{Role: "admin"}, []byte("another-secret-another-secret-00"), time.Hour)
	require.NoError(t, err)

	v := NewVerifier(testSecret)
	for name, tok := range map[string]string{"expired": expired, "wrong key": otherKey, "garbage": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.Error(t, err)
		})
	}
}

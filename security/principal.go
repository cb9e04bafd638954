package security

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

var roleDefaults = map[Role]PermissionSet{
	RoleAdmin: AllPermissions(),
	RoleManager: NewPermissionSet(
		PersonnelView, QRView, AttendanceView, AttendanceRecord,
		LeaveRequest, LeaveApprove, NotificationsSend, NotificationsRead,
		DashboardView, ReportsExport, PreferencesEdit,
	),
	RoleStaff: NewPermissionSet(
		AttendanceRecord, LeaveRequest, NotificationsRead, PreferencesEdit,
	),
}

func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Principal is an authenticated caller.
type Principal struct {
	Subject     string
	Name        string
	Role        Role
	Permissions PermissionSet
	PersonnelID *uint
}

// Effective returns the role defaults merged with the explicit grants.
func (p Principal) Effective() PermissionSet {
	return roleDefaults[p.Role].Union(p.Permissions)
}

// Allowed is the access control decision for a single permission.
func Allowed(p *Principal, perm Permission) bool {
	if p == nil {
		return false
	}
	return p.Effective().Has(perm)
}

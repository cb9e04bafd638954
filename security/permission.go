package security

import (
	"sort"
	"strings"
)

// Permission is a closed set of capabilities; PermissionSet is a bitset over it.
type Permission uint

const (
	PersonnelView Permission = iota
	PersonnelManage
	QRView
	QRManage
	ScreensManage
	AttendanceRecord
	AttendanceView
	LeaveRequest
	LeaveApprove
	NotificationsSend
	NotificationsRead
	SMSSend
	DashboardView
	ReportsExport
	PreferencesEdit

	permissionCount
)

var permissionNames = [permissionCount]string{
	PersonnelView:     "personnel.view",
	PersonnelManage:   "personnel.manage",
	QRView:            "qr.view",
	QRManage:          "qr.manage",
	ScreensManage:     "screens.manage",
	AttendanceRecord:  "attendance.record",
	AttendanceView:    "attendance.view",
	LeaveRequest:      "leave.request",
	LeaveApprove:      "leave.approve",
	NotificationsSend: "notifications.send",
	NotificationsRead: "notifications.read",
	SMSSend:           "sms.send",
	DashboardView:     "dashboard.view",
	ReportsExport:     "reports.export",
	PreferencesEdit:   "preferences.edit",
}

func (p Permission) String() string {
	if p < permissionCount {
		return permissionNames[p]
	}
	return "unknown"
}

// ParsePermission maps a claim string to a Permission.
func ParsePermission(s string) (Permission, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range permissionNames {
		if name == s {
			return Permission(i), true
		}
	}
	return 0, false
}

type PermissionSet uint64

func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s = s.With(p)
	}
	return s
}

func AllPermissions() PermissionSet {
	return PermissionSet(1)<<permissionCount - 1
}

func (s PermissionSet) With(p Permission) PermissionSet {
	return s | 1<<p
}

func (s PermissionSet) Has(p Permission) bool {
	return p < permissionCount && s&(1<<p) != 0
}

func (s PermissionSet) Union(o PermissionSet) PermissionSet {
	return s | o
}

// Strings lists the set members sorted by name, for claims and responses.
func (s PermissionSet) Strings() []string {
	var out []string
	for p := Permission(0); p < permissionCount; p++ {
		if s.Has(p) {
			out = append(out, p.String())
		}
	}
	sort.Strings(out)
	return out
}

// ParsePermissions converts claim strings to a set, returning the strings it
// did not recognise.
func ParsePermissions(values []string) (PermissionSet, []string) {
	var set PermissionSet
	var unknown []string
	for _, v := range values {
		p, ok := ParsePermission(v)
		if !ok {
			unknown = append(unknown, v)
			continue
		}
		set = set.With(p)
	}
	return set, unknown
}

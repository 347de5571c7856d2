package auth

import (
	"context"
	"slices"
)

const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

const (
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermAttendanceCorrect = "attendance.correct"
	PermSettingsWrite     = "attendance.settings.write"
	PermMetricsRead       = "metrics.read"
	PermAuditRead         = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermAttendanceRead,
	},
	RoleEditor: {
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceCorrect,
	},
	RoleAdmin: {
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceCorrect,
		PermSettingsWrite,
		PermMetricsRead,
		PermAuditRead,
	},
}

// StaticPermissions answers permission checks from RolePermissions. Roles
// are carried in the token, so no lookup is needed.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return slices.Contains(RolePermissions[role], permission), nil
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

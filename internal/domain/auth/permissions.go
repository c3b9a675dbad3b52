package auth

import "context"

const (
	PermOrgRead           = "org.read"
	PermOrgWrite          = "org.write"
	PermUsersRead         = "users.read"
	PermUsersWrite        = "users.write"
	PermCyclesWrite       = "cycles.write"
	PermGoalsRead         = "goals.read"
	PermGoalsWrite        = "goals.write"
	PermGoalsEvaluate     = "goals.evaluate"
	PermGradesWrite       = "grades.write"
	PermPerformanceRead   = "performance.read"
	PermReportsExport     = "reports.export"
	PermNotificationsRead = "notifications.read"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

// RolePermissions is the static role grant table. Roles are a closed set,
// so grants live in code rather than the database. Superadmin bypasses the
// table entirely.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermOrgRead,
		PermGoalsRead,
		PermGoalsWrite,
		PermPerformanceRead,
		PermNotificationsRead,
	},
	RoleManager: {
		PermOrgRead,
		PermUsersRead,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsEvaluate,
		PermPerformanceRead,
		PermReportsExport,
		PermNotificationsRead,
	},
	RoleHRAdmin: {
		PermOrgRead,
		PermUsersRead,
		PermUsersWrite,
		PermCyclesWrite,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsEvaluate,
		PermGradesWrite,
		PermPerformanceRead,
		PermReportsExport,
		PermNotificationsRead,
		PermAuditRead,
	},
	RoleCompanyAdmin: {
		PermOrgRead,
		PermOrgWrite,
		PermUsersRead,
		PermUsersWrite,
		PermCyclesWrite,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsEvaluate,
		PermGradesWrite,
		PermPerformanceRead,
		PermReportsExport,
		PermNotificationsRead,
		PermAuditRead,
	},
}

type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	if role == RoleSuperAdmin {
		return true, nil
	}
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}

package user

type Permission string

const (
	// Self service
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionCalendarView Permission = "leave.calendar_view"

	// Administration
	PermissionLeaveViewAll   Permission = "leave.view_all"
	PermissionLeaveApprove   Permission = "leave.approve"
	PermissionProfileManage  Permission = "leave.profile_manage"
	PermissionSettingsManage Permission = "leave.settings_manage"
	PermissionReportsView    Permission = "reports.view"
	PermissionReportsExport  Permission = "reports.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionCalendarView,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionProfileManage,
		PermissionSettingsManage,
		PermissionReportsView,
		PermissionReportsExport,
	},
	RoleEmployee: {
		// Employee has basic access
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionCalendarView,
	},
}

// ParseRole converts a raw claim value into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := RolePermissions[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

package user

import "errors"

var (
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrNotResourceOwner        = errors.New("access to another employee's leave data is not allowed")
	ErrUnknownRole             = errors.New("unknown role")
)

package user

type Role string

const (
	RoleAdmin    Role = "admin"    // HR / administration - full access
	RoleEmployee Role = "employee" // Regular employee
)

// Principal is the authenticated caller of a service operation. It is built
// from verified token claims at the transport boundary and passed explicitly.
type Principal struct {
	ID   string
	Role Role
}

// IsAdmin checks if the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Can checks if the principal's role grants permission
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

// CanActFor checks if the principal may act on the given employee's own data
func (p Principal) CanActFor(employeeID string) bool {
	return p.IsAdmin() || p.ID == employeeID
}

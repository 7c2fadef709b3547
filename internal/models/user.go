package models

import "time"

// Role constants. SUPERADMIN may act at any approval stage.
const (
	RoleSuperadmin        = "SUPERADMIN"
	RoleDepartmentManager = "DEPARTMENT_MANAGER"
	RoleITManager         = "IT_MANAGER"
	RoleFinanceManager    = "FINANCE_MANAGER"
	RoleEmployee          = "EMPLOYEE"
)

// ValidRoles lists every assignable user role.
var ValidRoles = []string{
	RoleSuperadmin,
	RoleDepartmentManager,
	RoleITManager,
	RoleFinanceManager,
	RoleEmployee,
}

// IsValidRole reports whether the role is assignable.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an authenticated actor.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

// UserRole represents the organizational roles recognised by the workflow.
type UserRole string

const (
	RoleInstructor  UserRole = "INSTRUCTOR"
	RoleDean        UserRole = "DEAN"
	RoleVPAA        UserRole = "VPAA"
	RoleVPADA       UserRole = "VPADA"
	RolePresident   UserRole = "PRESIDENT"
	RoleHR          UserRole = "HR"
	RoleRegistrar   UserRole = "REGISTRAR"
	RoleSystemAdmin UserRole = "SYSTEM_ADMIN"
)

// PrivilegedRoles are the roles with broad (but surface-dependent) visibility.
var PrivilegedRoles = []UserRole{RoleVPAA, RoleVPADA, RolePresident}

// IsPrivileged reports whether the role sees every document in listings.
func (r UserRole) IsPrivileged() bool {
	switch r {
	case RoleVPAA, RoleVPADA, RolePresident:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          UserRole   `db:"role" json:"role"`
	DesignationID *string    `db:"designation_id" json:"designation_id,omitempty"`
	Active        bool       `db:"active" json:"active"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role          *UserRole
	DesignationID string
	Active        *bool
	Search        string
	Page          int
	PageSize      int
}

// RoleConfig describes per-role presentation defaults: the dashboard landing
// route and display label.
type RoleConfig struct {
	Label         string `json:"label"`
	DashboardPath string `json:"dashboard_path"`
}

// DefaultRoleConfigs returns the standard role configuration table.
func DefaultRoleConfigs() map[UserRole]RoleConfig {
	return map[UserRole]RoleConfig{
		RoleInstructor:  {Label: "Instructor", DashboardPath: "/instructor"},
		RoleDean:        {Label: "Dean", DashboardPath: "/dean"},
		RoleVPAA:        {Label: "VP for Academic Affairs", DashboardPath: "/vpaa"},
		RoleVPADA:       {Label: "VP for Administration", DashboardPath: "/vpada"},
		RolePresident:   {Label: "President", DashboardPath: "/president"},
		RoleHR:          {Label: "Human Resources", DashboardPath: "/hr"},
		RoleRegistrar:   {Label: "Registrar", DashboardPath: "/registrar"},
		RoleSystemAdmin: {Label: "System Administrator", DashboardPath: "/admin"},
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

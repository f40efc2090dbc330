package domain

import "time"

// Role is the trust level carried by an authenticated principal. The core
// never verifies credentials itself; it trusts the role supplied by the
// auth middleware.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleSysadmin Role = "sysadmin"
)

// CanManageElections reports whether the role may create, update, or
// delete elections and candidates.
func (r Role) CanManageElections() bool {
	return r == RoleAdmin || r == RoleSysadmin
}

// Principal is the authenticated caller attached to every mutating
// operation.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Voter is the minimal identity record behind the voter-exists check.
type Voter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

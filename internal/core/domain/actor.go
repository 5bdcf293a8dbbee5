package domain

// Role represents a member's role within the savings group
type Role string

const (
	RoleLeader    Role = "leader"
	RoleTreasurer Role = "treasurer"
	RoleSecretary Role = "secretary"
	RoleMember    Role = "member"
)

// IsAdministrator reports whether the role carries the administrator
// capability: approving withdrawals and loans, recording contributions
// and repayments on behalf of members.
func (r Role) IsAdministrator() bool {
	return r == RoleLeader || r == RoleTreasurer
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleLeader, RoleTreasurer, RoleSecretary, RoleMember:
		return true
	}
	return false
}

// Actor identifies who performs a command. It is resolved once at the
// boundary (auth middleware) with its capability already decided; the
// ledger never probes roles ad hoc.
type Actor struct {
	ID    uint
	Name  string
	Role  Role
	Admin bool
}

// NewActor creates an actor with the capability derived from the role
func NewActor(id uint, name string, role Role) Actor {
	return Actor{
		ID:    id,
		Name:  name,
		Role:  role,
		Admin: role.IsAdministrator(),
	}
}

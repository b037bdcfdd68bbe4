package domain

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// ManagesSettings reports whether the role may open the account settings.
func (r Role) ManagesSettings() bool {
	return r == RoleOwner || r == RoleAdmin
}

// UserPermission is a user's membership of one account.
type UserPermission struct {
	ID        string
	UserID    string
	AccountID string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time

	Account *Account // populated by listings that join accounts
}

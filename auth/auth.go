// Package auth defines the identity model shared by the token codec, the
// request middleware and the user store: roles and the authenticated
// Identity attached to requests.
package auth

import "time"

// Role is a user's permission level. The set is fixed; there is no
// hierarchy beyond what the authorization policies encode explicitly.
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// In reports whether r is a member of the given set.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// AdminRoles is the privileged set that bypasses ownership checks.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// ModeratorRoles is the moderator-and-above set.
var ModeratorRoles = []Role{RoleModerator, RoleAdmin, RoleSuperAdmin}

// Identity is the authenticated principal attached to a request after the
// auth middleware accepts a token.
type Identity struct {
	ID        int64
	Email     string
	Name      string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

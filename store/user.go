package store

import (
	"strings"
	"time"

	"github.com/connexa-app/connexa/auth"
)

// User is the single persisted entity: one row in the users table.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"not null" json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         auth.Role `gorm:"not null;default:user" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Name returns the display name.
func (u *User) Name() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Sanitized is the client-facing view of a user. The password hash has no
// JSON mapping at all, so it cannot leak through this type.
type Sanitized struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sanitize strips credential material for client responses.
func (u *User) Sanitize() Sanitized {
	return Sanitized{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.Name(),
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SplitName breaks a single display name into first and last parts,
// accepting the registration payload's `name` form.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

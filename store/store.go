// Package store persists user records. The backing database is a single
// SQLite file with one table; an in-memory implementation exists for tests.
package store

import (
	"context"
	"errors"

	"github.com/connexa-app/connexa/auth"
)

// Store failures. Callers map these to HTTP statuses; anything else is an
// infrastructure error and surfaces as a 500.
var (
	ErrNotFound    = errors.New("store: user not found")
	ErrEmailExists = errors.New("store: email already exists")
)

// ListFilter narrows and pages List results.
type ListFilter struct {
	// Role filters to a single role when set.
	Role auth.Role
	// ActiveOnly excludes banned accounts when true.
	ActiveOnly bool
	// Page is 1-based; zero means the first page.
	Page int
	// PerPage caps the page size; zero means the default of 20.
	PerPage int
}

// Page is one page of a user listing.
type Page struct {
	Users      []User
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// Store is the user persistence contract consumed by handlers and the
// auth middleware's identity re-validation.
type Store interface {
	// FindByEmail looks a user up case-insensitively.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID looks a user up by primary key.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Create inserts a new user. Returns ErrEmailExists on a duplicate
	// email, compared case-insensitively.
	Create(ctx context.Context, u *User) error

	// Update persists changed fields of an existing user.
	Update(ctx context.Context, u *User) error

	// Delete removes a user by id.
	Delete(ctx context.Context, id int64) error

	// List returns a filtered, paginated page of users.
	List(ctx context.Context, f ListFilter) (*Page, error)
}

// normalizeFilter applies paging defaults.
func normalizeFilter(f ListFilter) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	return f
}

func totalPages(total int64, perPage int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

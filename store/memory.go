package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/connexa-app/connexa/auth"
)

// MemoryStore is an in-memory Store used by tests and as a stand-in when
// no database file is wanted.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64

	// FailNext, when set, makes the next operation return this error.
	// Lets tests exercise infrastructure-failure paths.
	FailNext error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*User), nextID: 1}
}

func (s *MemoryStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// FindByEmail looks a user up case-insensitively.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID looks a user up by primary key.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// Create inserts a new user.
func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailExists
		}
	}
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
	u.ID = s.nextID
	s.nextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

// Update persists changed fields of an existing user.
func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	existing, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return ErrEmailExists
		}
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now()
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

// Delete removes a user by id.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// List returns a filtered, paginated page of users.
func (s *MemoryStore) List(_ context.Context, f ListFilter) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	f = normalizeFilter(f)

	var matched []User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (f.Page - 1) * f.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.PerPage
	if end > len(matched) {
		end = len(matched)
	}

	return &Page{
		Users:      matched[start:end],
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages(total, f.PerPage),
	}, nil
}

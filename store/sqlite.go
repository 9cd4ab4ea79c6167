package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/logger"
)

// SQLiteStore persists users in a single-file SQLite database via GORM.
type SQLiteStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSQLiteStore opens (creating if needed) the database file and migrates
// the users table.
func NewSQLiteStore(path string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}

	// Single writer; SQLite serializes writes anyway.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.WithComponent("store")}
	s.log.Info("SQLite store ready", map[string]interface{}{"path": path})
	return s, nil
}

// FindByEmail looks a user up case-insensitively.
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find by email: %w", err)
	}
	return &u, nil
}

// FindByID looks a user up by primary key.
func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find by id: %w", err)
	}
	return &u, nil
}

// Create inserts a new user.
func (s *SQLiteStore) Create(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
	// The unique index on email is case-sensitive at the SQL level, so
	// duplicates differing only in case are caught here first.
	existing, err := s.FindByEmail(ctx, u.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailExists
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("store: create: %w", err)
	}
	return nil
}

// Update persists changed fields of an existing user.
func (s *SQLiteStore) Update(ctx context.Context, u *User) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"email":         u.Email,
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
			"is_active":     u.IsActive,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrEmailExists
		}
		return fmt.Errorf("store: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return fmt.Errorf("store: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated page of users.
func (s *SQLiteStore) List(ctx context.Context, f ListFilter) (*Page, error) {
	f = normalizeFilter(f)

	q := s.db.WithContext(ctx).Model(&User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("store: count: %w", err)
	}

	var users []User
	err := q.Order("id").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	return &Page{
		Users:      users,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages(total, f.PerPage),
	}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

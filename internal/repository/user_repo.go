package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hobbycircles/hobby-circles/internal/db"
	"github.com/hobbycircles/hobby-circles/internal/utils/pagination"
)

// UserRepository provides data access methods for the User model.
// The registry is append-only: rows are created at registration and never
// updated or deleted.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user row.
//
// Behavior:
//   - No uniqueness constraint on username: a second registration under the
//     same name creates a second, independently addressable row. Lookups
//     that expect a single record resolve to the earliest-inserted one
//     (FindByUsername). Pinned behavior, not an accident.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByUsername returns the earliest-inserted user with the given name.
//
// Behavior:
//   - Returns gorm.ErrRecordNotFound when no row matches.
//   - With duplicate usernames the lowest id (first registration) wins.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAll returns every user in insertion order. The match engine scans
// this slice linearly; the roster is assumed small.
func (r *UserRepository) ListAll(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// ListPage returns one page of the roster in insertion order.
//
// Behavior:
//   - Cursor-based pagination via an opaque token (id of the last row seen).
//   - Fetches limit+1 rows to decide whether a next page exists.
//
// Example:
//
//	repo.ListPage(ctx, nil, 20) // first 20 registrations
func (r *UserRepository) ListPage(
	ctx context.Context,
	pageToken *string,
	limit int,
) ([]db.User, *string, error) {
	cursor, err := pagination.Decode(getString(pageToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit + 1)
	if cursor.LastID > 0 {
		query = query.Where("id > ?", cursor.LastID)
	}

	var users []db.User
	if err := query.Find(&users).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(users) > limit {
		users = users[:limit]
		token, _ := pagination.Encode(pagination.Cursor{LastID: users[limit-1].ID})
		nextToken = &token
	}

	return users, nextToken, nil
}

// Count returns the total number of registrations, duplicates included.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

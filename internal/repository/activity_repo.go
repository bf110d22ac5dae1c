package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hobbycircles/hobby-circles/internal/db"
)

// ActivityRepository provides data access methods for the Activity model.
// The board is an append-only log: postings are never mutated or deleted,
// which is what keeps the id sequence gap-free.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new repository bound to the given DB connection.
func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: database}
}

// Create appends a posting and fills in its assigned id.
//
// Behavior:
//   - Ids come from the autoincrement sequence: 1-based, strictly
//     increasing, gap-free as long as nothing ever deletes a row.
func (r *ActivityRepository) Create(ctx context.Context, activity *db.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// Recent returns the last n postings in posting order (oldest of the
// window first), the way a bounded feed renders them.
//
// Example:
//
//	repo.Recent(ctx, 5) // the five most recent postings
func (r *ActivityRepository) Recent(ctx context.Context, n int) ([]db.Activity, error) {
	if n <= 0 {
		return []db.Activity{}, nil
	}

	var activities []db.Activity
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(n).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	// flip newest-first into posting order
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}
	return activities, nil
}

// Count returns the total number of postings.
func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Activity{}).Count(&count).Error
	return count, err
}

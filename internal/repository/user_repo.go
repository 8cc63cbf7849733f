package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/db"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateFields applies a partial field-level update (last-write-wins).
// Used for presence flips and location overwrites where loading the full
// record first would serve nothing.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateLocation overwrites the user's location field. No geofencing, no
// rate limit.
func (r *UserRepository) UpdateLocation(ctx context.Context, id string, loc *db.Location) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("location", loc).Error
}

// DiscoveryFeed returns active users within the caller's preferred age range,
// excluding the caller.
//
// Example:
//
//	repo.DiscoveryFeed(ctx, "u1", 21, 35, 20)
func (r *UserRepository) DiscoveryFeed(
	ctx context.Context,
	callerID string,
	minAge, maxAge, limit int,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("id != ?", callerID).
		Where("active = ?", true).
		Where("age BETWEEN ? AND ?", minAge, maxAge).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Suggestions returns active users excluding the caller and everyone in the
// exclude set (users already sharing a match record with the caller).
func (r *UserRepository) Suggestions(
	ctx context.Context,
	callerID string,
	exclude []string,
	limit int,
) ([]db.User, error) {
	var users []db.User
	query := r.db.WithContext(ctx).
		Where("id != ?", callerID).
		Where("active = ?", true).
		Limit(limit)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	err := query.Find(&users).Error
	return users, err
}

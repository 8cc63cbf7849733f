package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/db"
)

// PersonalityRepository provides data access methods for PersonalityScore.
type PersonalityRepository struct {
	db *gorm.DB
}

// NewPersonalityRepository creates a new repository bound to the given DB connection.
func NewPersonalityRepository(database *gorm.DB) *PersonalityRepository {
	return &PersonalityRepository{db: database}
}

// ListByUser returns the user's scores ordered by dimension.
func (r *PersonalityRepository) ListByUser(ctx context.Context, userID string) ([]db.PersonalityScore, error) {
	var scores []db.PersonalityScore
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("dimension ASC").
		Find(&scores).Error
	return scores, err
}

// ReplaceForUser atomically replaces all of the user's scores with the given
// set (delete-then-insert in one transaction). Resubmitting the quiz never
// leaves a partial mix of old and new rows.
func (r *PersonalityRepository) ReplaceForUser(
	ctx context.Context,
	userID string,
	scores []db.PersonalityScore,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.PersonalityScore{}).Error; err != nil {
			return err
		}
		if len(scores) == 0 {
			return nil
		}
		return tx.Create(&scores).Error
	})
}

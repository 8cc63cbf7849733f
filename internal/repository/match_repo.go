package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/db"
)

// MatchRepository provides data access methods for the Match model.
// It encapsulates all queries related to pairings between users.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

func (r *MatchRepository) Create(ctx context.Context, match *db.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *MatchRepository) Save(ctx context.Context, match *db.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

// FindByPair returns the match row for the (a, b) user pair, checking both
// field orderings. Returns (nil, nil) when no row exists.
//
// The pair invariant (at most one row per unordered pair) relies on every
// writer going through CreateMatch, which calls this first.
func (r *MatchRepository) FindByPair(ctx context.Context, a, b string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForUser returns the user's matches in the given status, most recent
// message first.
//
// Example:
//
//	repo.ListForUser(ctx, "u1", db.MatchActive)
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID string,
	status db.MatchStatus,
) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, status).
		Order("last_message_at DESC").
		Find(&matches).Error
	return matches, err
}

// ActiveMatchIDs returns the IDs of the user's active matches. Queried live
// at event time, never cached: room fan-out for activity events must see the
// current membership.
func (r *MatchRepository) ActiveMatchIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, db.MatchActive).
		Pluck("id", &ids).Error
	return ids, err
}

// MatchedUserIDs returns every user that shares a match row with the given
// user, in any status. Used to exclude known pairs from suggestions.
func (r *MatchRepository) MatchedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Select("user1_id", "user2_id").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, m := range matches {
		for _, id := range []string{m.User1ID, m.User2ID} {
			if id == userID {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

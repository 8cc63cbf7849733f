package presence

import (
	"context"
	"time"

	"github.com/veilapp/veil-backend/internal/app"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/repository"
)

// Tracker flips a user's durable online flag and maintains the short-lived
// presence marker in Redis. The Redis key is authoritative for "is this user
// online right now": it self-expires after cache.PresenceTTL, so a crashed
// client stops looking online even though the durable flag may stay stale
// until the next clean disconnect.
//
// Cache writes are best-effort: failures are logged and never fail the
// enclosing status flip.
type Tracker struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewTracker creates a presence tracker with dependencies from AppContext.
func NewTracker(appCtx *app.AppContext) *Tracker {
	return &Tracker{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// SetOnline marks the user online: durable flag + last-seen, then the TTL'd
// presence key.
func (t *Tracker) SetOnline(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	err := t.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"is_online": true,
		"last_seen": now,
	})
	if err != nil {
		return svcErr.Map(err)
	}

	if err := t.appCtx.RedisCache.SetPresence(ctx, userID); err != nil {
		t.appCtx.Logger.Warn("presence cache write failed", "user", userID, "err", err)
	}
	return nil
}

// SetOffline marks the user offline and removes the presence and activity
// keys immediately rather than waiting for TTL expiry.
func (t *Tracker) SetOffline(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	err := t.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"is_online": false,
		"last_seen": now,
	})
	if err != nil {
		return svcErr.Map(err)
	}

	if err := t.appCtx.RedisCache.ClearPresence(ctx, userID); err != nil {
		t.appCtx.Logger.Warn("presence cache delete failed", "user", userID, "err", err)
	}
	return nil
}

// IsOnline answers from the cache key only. Absence means offline regardless
// of the durable flag.
func (t *Tracker) IsOnline(ctx context.Context, userID string) bool {
	online, err := t.appCtx.RedisCache.IsOnline(ctx, userID)
	if err != nil {
		t.appCtx.Logger.Warn("presence cache read failed", "user", userID, "err", err)
		return false
	}
	return online
}

// RecordActivity stores the user's current activity text with the presence TTL.
func (t *Tracker) RecordActivity(ctx context.Context, userID, activity string) error {
	if err := t.appCtx.RedisCache.SetActivity(ctx, userID, activity); err != nil {
		t.appCtx.Logger.Warn("activity cache write failed", "user", userID, "err", err)
		return err
	}
	return nil
}

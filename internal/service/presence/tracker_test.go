package presence_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/cache"
	"github.com/veilapp/veil-backend/internal/config"
	"github.com/veilapp/veil-backend/internal/db"
	"github.com/veilapp/veil-backend/internal/service/presence"
)

// setupTracker spins up an in-memory SQLite DB with one seeded user, a
// miniredis, and wires everything into a Tracker. Each test gets its own
// isolated DB + Redis.
func setupTracker(t *testing.T) (*presence.Tracker, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}))
	require.NoError(t, dbase.Create(&db.User{
		ID:           "u1",
		Email:        "u1@test.com",
		PasswordHash: "x",
		FirstName:    "U",
		LastName:     "One",
		Age:          25,
		Gender:       db.GenderFemale,
		Active:       true,
	}).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(dbase, redisCache, logger)
	return presence.NewTracker(appCtx), dbase, mr
}

// TestSetOnlineThenOffline covers the core presence contract: online after
// SetOnline, offline immediately after SetOffline (not merely after TTL).
func TestSetOnlineThenOffline(t *testing.T) {
	ctx := context.Background()
	tracker, dbase, _ := setupTracker(t)

	require.NoError(t, tracker.SetOnline(ctx, "u1"))
	assert.True(t, tracker.IsOnline(ctx, "u1"))

	var user db.User
	require.NoError(t, dbase.First(&user, "id = ?", "u1").Error)
	assert.True(t, user.IsOnline)
	assert.NotNil(t, user.LastSeen)

	require.NoError(t, tracker.SetOffline(ctx, "u1"))
	assert.False(t, tracker.IsOnline(ctx, "u1"))

	require.NoError(t, dbase.First(&user, "id = ?", "u1").Error)
	assert.False(t, user.IsOnline)
}

// TestPresenceExpiresByTTL verifies the cache marker self-expires after the
// presence TTL, so a crashed client stops looking online without a clean
// disconnect. The durable flag is knowingly left stale in that case.
func TestPresenceExpiresByTTL(t *testing.T) {
	ctx := context.Background()
	tracker, dbase, mr := setupTracker(t)

	require.NoError(t, tracker.SetOnline(ctx, "u1"))
	assert.True(t, tracker.IsOnline(ctx, "u1"))

	mr.FastForward(cache.PresenceTTL + time.Second)
	assert.False(t, tracker.IsOnline(ctx, "u1"))

	// durable flag is still true: the documented stale-flag gap
	var user db.User
	require.NoError(t, dbase.First(&user, "id = ?", "u1").Error)
	assert.True(t, user.IsOnline)
}

// TestSetOfflineClearsActivity ensures the activity marker goes away with
// the presence key on a clean disconnect.
func TestSetOfflineClearsActivity(t *testing.T) {
	ctx := context.Background()
	tracker, _, mr := setupTracker(t)

	require.NoError(t, tracker.SetOnline(ctx, "u1"))
	require.NoError(t, tracker.RecordActivity(ctx, "u1", "listening to music"))
	assert.True(t, mr.Exists("activity:u1"))

	require.NoError(t, tracker.SetOffline(ctx, "u1"))
	assert.False(t, mr.Exists("activity:u1"))
	assert.False(t, mr.Exists("presence:u1"))
}

// TestCacheFailureDoesNotBlockStatusFlip covers the best-effort contract:
// a dead cache is logged and swallowed, the durable flip still happens.
func TestCacheFailureDoesNotBlockStatusFlip(t *testing.T) {
	ctx := context.Background()
	tracker, dbase, mr := setupTracker(t)

	mr.Close() // kill the cache

	require.NoError(t, tracker.SetOnline(ctx, "u1"))

	var user db.User
	require.NoError(t, dbase.First(&user, "id = ?", "u1").Error)
	assert.True(t, user.IsOnline)
}

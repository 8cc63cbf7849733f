package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/db"
	"github.com/veilapp/veil-backend/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.User{}, &db.Match{}, &db.Message{}, &db.PersonalityScore{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestFindByPairEitherOrder(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	match := &db.Match{User1ID: "u1", User2ID: "u2", Status: db.MatchPending}
	require.NoError(t, repo.Create(ctx, match))

	// same order
	found, err := repo.FindByPair(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, match.ID, found.ID)

	// reversed order
	found, err = repo.FindByPair(ctx, "u2", "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, match.ID, found.ID)

	// unknown pair
	found, err = repo.FindByPair(ctx, "u1", "u3")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListForUserOrdering(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()

	m1 := &db.Match{User1ID: "u1", User2ID: "u2", Status: db.MatchActive, LastMessageAt: &older}
	m2 := &db.Match{User1ID: "u3", User2ID: "u1", Status: db.MatchActive, LastMessageAt: &newer}
	m3 := &db.Match{User1ID: "u1", User2ID: "u4", Status: db.MatchArchived, LastMessageAt: &newer}
	for _, m := range []*db.Match{m1, m2, m3} {
		require.NoError(t, repo.Create(ctx, m))
	}

	matches, err := repo.ListForUser(ctx, "u1", db.MatchActive)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, m2.ID, matches[0].ID) // most recent message first
	assert.Equal(t, m1.ID, matches[1].ID)
}

func TestActiveMatchIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	active := &db.Match{User1ID: "u1", User2ID: "u2", Status: db.MatchActive}
	pending := &db.Match{User1ID: "u1", User2ID: "u3", Status: db.MatchPending}
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, pending))

	ids, err := repo.ActiveMatchIDs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, active.ID, ids[0])
}

func TestMatchedUserIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	require.NoError(t, repo.Create(ctx, &db.Match{User1ID: "u1", User2ID: "u2", Status: db.MatchActive}))
	require.NoError(t, repo.Create(ctx, &db.Match{User1ID: "u3", User2ID: "u1", Status: db.MatchBlocked}))

	ids, err := repo.MatchedUserIDs(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, ids)
}

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilapp/veil-backend/internal/db"
	"github.com/veilapp/veil-backend/internal/repository"
)

func TestListByMatchPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	for i := 0; i < 7; i++ {
		msg := &db.Message{
			MatchID:   "m1",
			SenderID:  "u1",
			Type:      db.MessageText,
			Content:   fmt.Sprintf("message %d", i),
			Status:    db.MessageSent,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, msg))
	}

	// first page, newest first
	page1, next, err := repo.ListByMatch(ctx, "m1", nil, 5)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	require.NotNil(t, next)
	assert.Equal(t, "message 6", page1[0].Content)
	assert.Equal(t, "message 2", page1[4].Content)

	// second page via cursor
	page2, next2, err := repo.ListByMatch(ctx, "m1", next, 5)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Nil(t, next2)
	assert.Equal(t, "message 1", page2[0].Content)
	assert.Equal(t, "message 0", page2[1].Content)
}

func TestListByMatchScopedToMatch(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	require.NoError(t, repo.Create(ctx, &db.Message{MatchID: "m1", SenderID: "u1", Content: "ours", Status: db.MessageSent}))
	require.NoError(t, repo.Create(ctx, &db.Message{MatchID: "m2", SenderID: "u2", Content: "theirs", Status: db.MessageSent}))

	messages, _, err := repo.ListByMatch(ctx, "m1", nil, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "ours", messages[0].Content)
}

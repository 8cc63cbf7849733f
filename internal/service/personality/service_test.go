package personality_test

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
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/service/personality"
)

func setupService(t *testing.T) (*personality.Service, *gorm.DB) {
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

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.PersonalityScore{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), logger)
	return personality.NewService(appCtx), dbase
}

func seedScores(t *testing.T, dbase *gorm.DB, userID string, scores map[db.PersonalityDimension]float64) {
	t.Helper()
	for dim, score := range scores {
		require.NoError(t, dbase.Create(&db.PersonalityScore{
			UserID:     userID,
			Dimension:  dim,
			Score:      score,
			Confidence: 75,
		}).Error)
	}
}

func TestSubmitQuizRejectsOutOfScaleResponses(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.SubmitQuiz(ctx, "u1", nil)
	require.Error(t, err)
	assert.True(t, svcErr.Is(err, svcErr.KindInvalidArgument))

	for _, bad := range []int{0, 6} {
		_, err := svc.SubmitQuiz(ctx, "u1", []personality.QuizResponse{
			{QuestionID: 1, Response: bad},
		})
		require.Error(t, err)
		assert.True(t, svcErr.Is(err, svcErr.KindInvalidArgument))
	}
}

// TestSubmitQuizPartitioning: 20 responses split into contiguous chunks of 2,
// one per dimension in the fixed dimension order.
func TestSubmitQuizPartitioning(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// pairs of (5,5), (1,1), (3,3), ... → scores 1.0, 0.0, 0.5, ...
	responses := make([]personality.QuizResponse, 0, 20)
	values := []int{5, 5, 1, 1, 3, 3}
	for i := 0; i < 20; i++ {
		v := 3
		if i < len(values) {
			v = values[i]
		}
		responses = append(responses, personality.QuizResponse{QuestionID: i + 1, Response: v})
	}

	scores, err := svc.SubmitQuiz(ctx, "u1", responses)
	require.NoError(t, err)
	require.Len(t, scores, 10)

	dims := db.Dimensions()
	assert.Equal(t, dims[0], scores[0].Dimension)
	assert.Equal(t, 1.0, scores[0].Score)
	assert.Equal(t, dims[1], scores[1].Dimension)
	assert.Equal(t, 0.0, scores[1].Score)
	assert.Equal(t, dims[2], scores[2].Dimension)
	assert.Equal(t, 0.5, scores[2].Score)
	for _, s := range scores {
		assert.Equal(t, 75, s.Confidence)
		assert.Len(t, s.Details.Responses, 20)
	}
}

// TestSubmitQuizFewerResponsesThanDimensions: with n < 10 answers only the
// first n dimensions get a score row.
func TestSubmitQuizFewerResponsesThanDimensions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	scores, err := svc.SubmitQuiz(ctx, "u1", []personality.QuizResponse{
		{QuestionID: 1, Response: 5},
		{QuestionID: 2, Response: 1},
		{QuestionID: 3, Response: 3},
	})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	dims := db.Dimensions()
	for i, s := range scores {
		assert.Equal(t, dims[i], s.Dimension)
	}
	assert.Equal(t, 1.0, scores[0].Score)
	assert.Equal(t, 0.0, scores[1].Score)
	assert.Equal(t, 0.5, scores[2].Score)
}

// TestSubmitQuizReplacesPriorScores: resubmission wipes the old score set
// instead of accumulating rows.
func TestSubmitQuizReplacesPriorScores(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	_, err := svc.SubmitQuiz(ctx, "u1", []personality.QuizResponse{
		{QuestionID: 1, Response: 5},
		{QuestionID: 2, Response: 5},
	})
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(ctx, "u1", []personality.QuizResponse{
		{QuestionID: 1, Response: 1},
	})
	require.NoError(t, err)

	var rows []db.PersonalityScore
	require.NoError(t, dbase.Where("user_id = ?", "u1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Score)
}

func TestCompatibilitySingleSharedDimension(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	seedScores(t, dbase, "u1", map[db.PersonalityDimension]float64{db.DimOpenness: 0.8})
	seedScores(t, dbase, "u2", map[db.PersonalityDimension]float64{db.DimOpenness: 0.6})

	score, err := svc.Compatibility(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score)
}

func TestCompatibilityMeanOverMatchedDimensions(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	seedScores(t, dbase, "u1", map[db.PersonalityDimension]float64{
		db.DimOpenness:     0.9,
		db.DimHumorStyle:   0.2,
		db.DimExtraversion: 0.5, // unmatched, must not count
	})
	seedScores(t, dbase, "u2", map[db.PersonalityDimension]float64{
		db.DimOpenness:   0.9,
		db.DimHumorStyle: 0.7,
	})

	score, err := svc.Compatibility(ctx, "u1", "u2")
	require.NoError(t, err)
	// (1.0 + 0.5) / 2
	assert.Equal(t, 0.75, score)
}

func TestCompatibilityZeroWithoutOverlap(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	// u2 has no scores at all
	seedScores(t, dbase, "u1", map[db.PersonalityDimension]float64{db.DimOpenness: 0.8})

	score, err := svc.Compatibility(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// disjoint dimension sets
	seedScores(t, dbase, "u2", map[db.PersonalityDimension]float64{db.DimHumorStyle: 0.8})

	score, err = svc.Compatibility(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestIcebreakersReturnsThreeFromPool(t *testing.T) {
	svc, _ := setupService(t)

	picks := svc.Icebreakers(context.Background())
	require.Len(t, picks, 3)

	seen := make(map[string]struct{}, 3)
	for _, p := range picks {
		assert.NotEmpty(t, p)
		seen[p] = struct{}{}
	}
	assert.Len(t, seen, 3)
}

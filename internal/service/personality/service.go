package personality

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/db"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/repository"
)

// quizConfidence is the fixed confidence attached to every quiz-derived
// score. The quiz pipeline has no per-answer confidence model yet.
const quizConfidence = 75

// QuizResponse is one answered quiz question on a 1-5 scale.
type QuizResponse struct {
	QuestionID int `json:"questionId"`
	Response   int `json:"response"`
}

// Service computes per-dimension personality scores from quiz answers and a
// similarity-based compatibility score between two users' score sets.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.PersonalityRepository
}

// NewService creates the personality service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewPersonalityRepository(appCtx.DB),
	}
}

// SubmitQuiz scores the caller's quiz responses and replaces all of their
// prior scores (delete-then-insert, atomic from the caller's perspective).
//
// The response list is partitioned contiguously and roughly evenly across
// the ten dimensions in their fixed order; each chunk's average on the 1-5
// scale rescales linearly to [0,1]. With fewer responses than dimensions,
// trailing dimensions get no chunk and therefore no score row.
func (s *Service) SubmitQuiz(ctx context.Context, callerID string, responses []QuizResponse) ([]db.PersonalityScore, error) {
	if len(responses) == 0 {
		return nil, svcErr.InvalidArgument("quiz responses are required")
	}
	for _, r := range responses {
		if r.Response < 1 || r.Response > 5 {
			return nil, svcErr.InvalidArgument("responses must be on a 1-5 scale")
		}
	}

	raw := make([]int, len(responses))
	for i, r := range responses {
		raw[i] = r.Response
	}

	dims := db.Dimensions()
	chunkSize := int(math.Ceil(float64(len(responses)) / float64(len(dims))))

	var scores []db.PersonalityScore
	for i, dim := range dims {
		start := i * chunkSize
		if start >= len(responses) {
			break
		}
		end := start + chunkSize
		if end > len(responses) {
			end = len(responses)
		}
		chunk := responses[start:end]

		sum := 0
		for _, r := range chunk {
			sum += r.Response
		}
		average := float64(sum) / float64(len(chunk))
		score := round2((average - 1) / 4)

		scores = append(scores, db.PersonalityScore{
			UserID:     callerID,
			Dimension:  dim,
			Score:      score,
			Confidence: quizConfidence,
			Details: db.ScoreDetails{
				Responses: raw,
				Reasoning: fmt.Sprintf("Calculated from %d quiz responses", len(chunk)),
				Traits:    traitsFor(dim, score),
				Keywords:  keywordsFor(dim),
			},
		})
	}

	if err := s.repo.ReplaceForUser(ctx, callerID, scores); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("personality quiz submitted", "user", callerID, "dimensions", len(scores))
	return scores, nil
}

// GetScores returns the user's scores ordered by dimension.
func (s *Service) GetScores(ctx context.Context, userID string) ([]db.PersonalityScore, error) {
	scores, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return scores, nil
}

// Compatibility computes the similarity score between two users.
//
// For each dimension present in both score sets the contribution is
// 1 - |scoreA - scoreB|; the final score is the mean over matched
// dimensions, rounded to 2 decimals. Returns 0 when either user has no
// scores or no dimensions overlap.
func (s *Service) Compatibility(ctx context.Context, userID, targetID string) (float64, error) {
	userScores, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	targetScores, err := s.repo.ListByUser(ctx, targetID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if len(userScores) == 0 || len(targetScores) == 0 {
		return 0, nil
	}

	byDim := make(map[db.PersonalityDimension]float64, len(targetScores))
	for _, t := range targetScores {
		byDim[t.Dimension] = t.Score
	}

	total := 0.0
	matched := 0
	for _, u := range userScores {
		t, ok := byDim[u.Dimension]
		if !ok {
			continue
		}
		total += 1 - math.Abs(u.Score-t)
		matched++
	}

	if matched == 0 {
		return 0, nil
	}
	return round2(total / float64(matched)), nil
}

// icebreakerPool backs the Icebreakers query until contextual generation
// lands.
var icebreakerPool = []string{
	"What's the most interesting place you've traveled to?",
	"If you could have dinner with anyone, who would it be?",
	"What's your favorite way to spend a weekend?",
	"What's something you're passionate about that most people don't know?",
	"If you could learn any skill instantly, what would it be?",
}

// Icebreakers returns 3 random conversation starters.
func (s *Service) Icebreakers(ctx context.Context) []string {
	pool := make([]string, len(icebreakerPool))
	copy(pool, icebreakerPool)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:3]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

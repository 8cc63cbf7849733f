package match

import (
	"context"
	"time"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/db"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/realtime"
	"github.com/veilapp/veil-backend/internal/repository"
)

// matchTTL is how long a pending match stays open before its expiry
// timestamp passes.
const matchTTL = 24 * time.Hour

// revealThreshold is the message count at which prompt-only sides step up to
// name_and_prompt. The escalation fires exactly once, when the count first
// reaches the threshold; it is not re-evaluated at higher counts.
const revealThreshold = 5

const defaultInitialPrompt = "Tell me about your perfect weekend"

// Notifier pushes best-effort realtime events. Satisfied by *realtime.Hub;
// tests substitute a recorder.
type Notifier interface {
	EmitToUser(userID, event string, data interface{})
	EmitToMatch(matchID, event string, data interface{})
}

// NewMessageEvent is the payload pushed to the counterpart's user room and
// the match room when a message is persisted.
type NewMessageEvent struct {
	Message  *db.Message `json:"message"`
	SenderID string      `json:"senderId"`
}

// Service coordinates match and message records: creation, mutual-match
// activation, message persistence with reveal-level escalation, and
// best-effort realtime delivery.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	notifier    Notifier
}

// NewService creates the match service with dependencies from AppContext.
// The notifier may be nil; delivery is then skipped entirely (pull-only).
func NewService(appCtx *app.AppContext, notifier Notifier) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		notifier:    notifier,
	}
}

// CreateMatch records a match attempt from caller toward target.
//
// Behavior:
//   - Target user must exist, else NotFound.
//   - An existing pending record (in either field order) is escalated to
//     active: the first caller creates pending, the counterpart's identical
//     call activates it, regardless of call order.
//   - An existing record in any other status fails with AlreadyExists.
//   - Otherwise a new pending record is created with both reveal levels at
//     prompt_only, a 24-hour expiry and the default icebreaker prompt.
func (s *Service) CreateMatch(ctx context.Context, callerID, targetUserID string) (*db.Match, error) {
	s.appCtx.Logger.Debug("CreateMatch called", "caller", callerID, "target", targetUserID)

	if targetUserID == callerID {
		return nil, svcErr.InvalidArgument("cannot match with yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, svcErr.Map(err)
	}

	existing, err := s.matchRepo.FindByPair(ctx, callerID, targetUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	if existing != nil {
		if existing.Status == db.MatchPending {
			existing.Status = db.MatchActive
			if err := s.matchRepo.Save(ctx, existing); err != nil {
				return nil, svcErr.Map(err)
			}
			s.appCtx.Logger.Info("match activated", "match", existing.ID)
			return existing, nil
		}
		return nil, svcErr.AlreadyExists("match already exists")
	}

	expires := time.Now().UTC().Add(matchTTL)
	match := &db.Match{
		User1ID:          callerID,
		User2ID:          targetUserID,
		Status:           db.MatchPending,
		User1RevealLevel: db.RevealPromptOnly,
		User2RevealLevel: db.RevealPromptOnly,
		ExpiresAt:        &expires,
		Metadata: db.MatchMetadata{
			InitialPrompt: defaultInitialPrompt,
			Icebreakers:   []string{},
		},
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("new match created", "match", match.ID)
	return match, nil
}

// GetMatches returns the caller's active matches, most recent message first.
func (s *Service) GetMatches(ctx context.Context, callerID string) ([]db.Match, error) {
	matches, err := s.matchRepo.ListForUser(ctx, callerID, db.MatchActive)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return matches, nil
}

// SendMessage persists a message in an active match and delivers it
// best-effort.
//
// Behavior:
//   - Match must exist and be active; caller must be a participant.
//   - Message count and last-message timestamp are bumped. No lock is taken
//     around the read-modify-write: concurrent sends can race on the
//     increment (accepted last-write-wins).
//   - When the count first reaches revealThreshold, any side still at
//     prompt_only steps up exactly one level.
//   - The counterpart's user room gets newMessage; the match room gets
//     messageAdded for live subscribers. An offline client reconciles via
//     GetMessages.
func (s *Service) SendMessage(
	ctx context.Context,
	callerID, matchID string,
	msgType db.MessageType,
	content, mediaURL string,
) (*db.Message, error) {
	s.appCtx.Logger.Debug("SendMessage called", "caller", callerID, "match", matchID, "type", msgType)

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !match.Participant(callerID) {
		return nil, svcErr.Unauthorized("not a participant of this match")
	}
	if match.Status != db.MatchActive {
		return nil, svcErr.InvalidState("match is not active")
	}

	msg := &db.Message{
		MatchID:  matchID,
		SenderID: callerID,
		Type:     msgType,
		Content:  content,
		MediaURL: mediaURL,
		Status:   db.MessageSent,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, svcErr.Map(err)
	}

	now := time.Now().UTC()
	match.LastMessageAt = &now
	match.MessageCount++

	if match.MessageCount == revealThreshold {
		if match.User1RevealLevel == db.RevealPromptOnly {
			match.User1RevealLevel = db.RevealNameAndPrompt
		}
		if match.User2RevealLevel == db.RevealPromptOnly {
			match.User2RevealLevel = db.RevealNameAndPrompt
		}
	}

	if err := s.matchRepo.Save(ctx, match); err != nil {
		return nil, svcErr.Map(err)
	}

	if s.notifier != nil {
		event := NewMessageEvent{Message: msg, SenderID: callerID}
		s.notifier.EmitToUser(match.Counterpart(callerID), realtime.EventNewMessage, event)
		s.notifier.EmitToMatch(matchID, realtime.EventMessageAdded, event)
	}

	s.appCtx.Logger.Info("message sent", "message", msg.ID, "match", matchID)
	return msg, nil
}

// GetMessages returns a match's message history, newest first, with cursor
// pagination. Participant-only.
func (s *Service) GetMessages(
	ctx context.Context,
	callerID, matchID string,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}
	if !match.Participant(callerID) {
		return nil, nil, svcErr.Unauthorized("not a participant of this match")
	}

	if limit <= 0 {
		limit = 50
	}
	messages, next, err := s.messageRepo.ListByMatch(ctx, matchID, paginationToken, limit)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}
	return messages, next, nil
}

// UpdateRevealLevel sets the caller's side of the reveal ladder.
// Participant-only.
func (s *Service) UpdateRevealLevel(ctx context.Context, callerID, matchID string, level db.RevealLevel) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !match.Participant(callerID) {
		return nil, svcErr.Unauthorized("not a participant of this match")
	}

	if match.User1ID == callerID {
		match.User1RevealLevel = level
	} else {
		match.User2RevealLevel = level
	}
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("reveal level updated", "match", matchID, "user", callerID, "level", string(level))
	return match, nil
}

// ArchiveMatch moves the match to archived. Terminal for interaction; the
// row is retained for history. Participant-only.
func (s *Service) ArchiveMatch(ctx context.Context, callerID, matchID string) error {
	return s.setStatus(ctx, callerID, matchID, db.MatchArchived)
}

// BlockMatch moves the match to blocked. Participant-only.
func (s *Service) BlockMatch(ctx context.Context, callerID, matchID string) error {
	return s.setStatus(ctx, callerID, matchID, db.MatchBlocked)
}

func (s *Service) setStatus(ctx context.Context, callerID, matchID string, status db.MatchStatus) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !match.Participant(callerID) {
		return svcErr.Unauthorized("not a participant of this match")
	}

	match.Status = status
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("match status changed", "match", matchID, "status", string(status), "by", callerID)
	return nil
}

// RateConversation stores the caller's 1-5 rating of the conversation on
// their side of the match metadata.
func (s *Service) RateConversation(ctx context.Context, callerID, matchID string, rating int) error {
	if rating < 1 || rating > 5 {
		return svcErr.InvalidArgument("rating must be between 1 and 5")
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !match.Participant(callerID) {
		return svcErr.Unauthorized("not a participant of this match")
	}

	if match.Metadata.ConversationRating == nil {
		match.Metadata.ConversationRating = &db.ConversationRating{}
	}
	if match.User1ID == callerID {
		match.Metadata.ConversationRating.User1Rating = &rating
	} else {
		match.Metadata.ConversationRating.User2Rating = &rating
	}

	if err := s.matchRepo.Save(ctx, match); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("conversation rated", "match", matchID, "by", callerID, "rating", rating)
	return nil
}

// MarkMessageAsRead flips a message to read with a timestamp. Only the
// non-sender participant may mark; marking one's own message fails.
func (s *Service) MarkMessageAsRead(ctx context.Context, callerID, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return svcErr.Map(err)
	}

	match, err := s.matchRepo.GetByID(ctx, msg.MatchID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !match.Participant(callerID) || msg.SenderID == callerID {
		return svcErr.Unauthorized("cannot mark own message as read")
	}

	now := time.Now().UTC()
	msg.Status = db.MessageRead
	msg.ReadAt = &now
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// DeleteMessage soft-deletes a message: status and timestamp flip, content
// retained. Sender-only.
func (s *Service) DeleteMessage(ctx context.Context, callerID, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return svcErr.Map(err)
	}
	if msg.SenderID != callerID {
		return svcErr.Unauthorized("can only delete your own messages")
	}

	now := time.Now().UTC()
	msg.Status = db.MessageDeleted
	msg.DeletedAt = &now
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Info("message deleted", "message", messageID, "by", callerID)
	return nil
}

// GetMatchSuggestions returns active users the caller has no match record
// with yet.
func (s *Service) GetMatchSuggestions(ctx context.Context, callerID string, limit int) ([]db.User, error) {
	if limit <= 0 {
		limit = 10
	}

	exclude, err := s.matchRepo.MatchedUserIDs(ctx, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	users, err := s.userRepo.Suggestions(ctx, callerID, exclude, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return users, nil
}

package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"
	GenderOther     Gender = "other"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

type SubscriptionType string

const (
	SubscriptionFree        SubscriptionType = "free"
	SubscriptionPremium     SubscriptionType = "premium"
	SubscriptionPremiumPlus SubscriptionType = "premium_plus"
)

// Preferences controls who appears in a user's discovery feed.
type Preferences struct {
	AgeRange struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"age_range"`
	MaxDistance      int      `json:"max_distance"`
	GenderPreference []Gender `json:"gender_preference"`
	DealBreakers     []string `json:"deal_breakers"`
}

type PrivacySettings struct {
	IncognitoMode      bool `json:"incognito_mode"`
	ShowOnlineStatus   bool `json:"show_online_status"`
	AllowVoiceMessages bool `json:"allow_voice_messages"`
	AllowVideoMessages bool `json:"allow_video_messages"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User table. Accounts are soft-deleted via Active=false, never removed.
// IsOnline is the durable presence flag; the authoritative short-lived
// presence marker lives in Redis with a TTL.
type User struct {
	ID                 string             `gorm:"primaryKey;size:36"`
	Email              string             `gorm:"uniqueIndex;size:128;not null"`
	Phone              string             `gorm:"size:32"`
	PasswordHash       string             `gorm:"size:255;not null"`
	FirstName          string             `gorm:"size:64;not null"`
	LastName           string             `gorm:"size:64;not null"`
	Age                int                `gorm:"not null"`
	Gender             Gender             `gorm:"size:16;not null"`
	VerificationStatus VerificationStatus `gorm:"size:16;default:unverified"`
	SubscriptionType   SubscriptionType   `gorm:"size:16;default:free"`
	Bio                string             `gorm:"type:text"`
	Interests          []string           `gorm:"serializer:json"`
	Photos             []string           `gorm:"serializer:json"`
	ProfilePhotoURL    string             `gorm:"size:512"`
	PromptAnswers      []string           `gorm:"serializer:json"`
	Preferences        Preferences        `gorm:"serializer:json"`
	Location           *Location          `gorm:"serializer:json"`
	PrivacySettings    PrivacySettings    `gorm:"serializer:json"`
	Badges             []string           `gorm:"serializer:json"`
	ConversationRating int                `gorm:"default:0"`
	TotalConversations int                `gorm:"default:0"`
	Active             bool               `gorm:"default:true"`
	IsOnline           bool               `gorm:"default:false"`
	LastSeen           *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchActive   MatchStatus = "active"
	MatchArchived MatchStatus = "archived"
	MatchBlocked  MatchStatus = "blocked"
	MatchExpired  MatchStatus = "expired"
)

// RevealLevel is the ordered disclosure ladder gating how much of a matched
// user's identity is shown.
type RevealLevel string

const (
	RevealPromptOnly    RevealLevel = "prompt_only"
	RevealNameAndPrompt RevealLevel = "name_and_prompt"
	RevealBlurredPhoto  RevealLevel = "blurred_photo"
	RevealFullPhoto     RevealLevel = "full_photo"
	RevealFullProfile   RevealLevel = "full_profile"
)

// ConversationRating holds each side's 1-5 rating of the conversation.
type ConversationRating struct {
	User1Rating *int `json:"user1_rating,omitempty"`
	User2Rating *int `json:"user2_rating,omitempty"`
}

type MatchMetadata struct {
	InitialPrompt       string              `json:"initial_prompt,omitempty"`
	Icebreakers         []string            `json:"icebreakers,omitempty"`
	CompletedChallenges []string            `json:"completed_challenges,omitempty"`
	ConversationRating  *ConversationRating `json:"conversation_rating,omitempty"`
}

// Match represents a potential/active conversational pairing between two users.
//
// Invariants:
//   - A pair of users has at most one match row in either field order;
//     lookups always check both orderings.
//   - Status escalates pending → active when the counterpart repeats the
//     match attempt; archived/blocked/expired are terminal for interaction
//     but rows are retained for history.
//
// Indexes:
//   - idx_match_pair(user1_id, user2_id) for pair lookups.
//   - idx_match_user_status on each side for "my active matches" queries.
type Match struct {
	ID                  string        `gorm:"primaryKey;size:36"`
	User1ID             string        `gorm:"size:36;not null;index:idx_match_pair,priority:1;index:idx_match_user1_status,priority:1"`
	User2ID             string        `gorm:"size:36;not null;index:idx_match_pair,priority:2;index:idx_match_user2_status,priority:1"`
	Status              MatchStatus   `gorm:"size:16;default:pending;index:idx_match_user1_status,priority:2;index:idx_match_user2_status,priority:2"`
	User1RevealLevel    RevealLevel   `gorm:"size:24;default:prompt_only"`
	User2RevealLevel    RevealLevel   `gorm:"size:24;default:prompt_only"`
	MessageCount        int           `gorm:"default:0"`
	ChallengesCompleted int           `gorm:"default:0"`
	LastMessageAt       *time.Time
	ExpiresAt           *time.Time
	Metadata            MatchMetadata `gorm:"serializer:json"`
	IsRematchable       bool          `gorm:"default:false"`
	CreatedAt           time.Time     `gorm:"autoCreateTime"`
	UpdatedAt           time.Time     `gorm:"autoUpdateTime"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Participant reports whether userID is one of the match's two users.
func (m *Match) Participant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Counterpart returns the other side of the match for the given participant.
func (m *Match) Counterpart(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

type MessageType string

const (
	MessageText       MessageType = "text"
	MessageVoice      MessageType = "voice"
	MessageVideo      MessageType = "video"
	MessageImage      MessageType = "image"
	MessageGif        MessageType = "gif"
	MessageSticker    MessageType = "sticker"
	MessageChallenge  MessageType = "challenge"
	MessageIcebreaker MessageType = "icebreaker"
)

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
	MessageDeleted   MessageStatus = "deleted"
	MessageModerated MessageStatus = "moderated"
)

type MessageMetadata struct {
	Duration   int `json:"duration,omitempty"`
	Dimensions *struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions,omitempty"`
	ChallengeType      string `json:"challenge_type,omitempty"`
	IcebreakerCategory string `json:"icebreaker_category,omitempty"`
	FileName           string `json:"file_name,omitempty"`
	FileSize           int64  `json:"file_size,omitempty"`
	IsBlurred          bool   `json:"is_blurred,omitempty"`
}

// Message belongs to exactly one match and one sender. Rows are mutated only
// to flip status/read/delete timestamps; a message is never reassigned.
type Message struct {
	ID               string          `gorm:"primaryKey;size:36"`
	MatchID          string          `gorm:"size:36;not null;index:idx_message_match_created,priority:1"`
	SenderID         string          `gorm:"size:36;not null"`
	Type             MessageType     `gorm:"size:16;default:text"`
	Content          string          `gorm:"type:text"`
	MediaURL         string          `gorm:"size:512"`
	ThumbnailURL     string          `gorm:"size:512"`
	Metadata         MessageMetadata `gorm:"serializer:json"`
	Status           MessageStatus   `gorm:"size:16;default:sent"`
	ReadAt           *time.Time
	DeletedAt        *time.Time
	IsEdited         bool   `gorm:"default:false"`
	IsFlagged        bool   `gorm:"default:false"`
	ModerationReason string `gorm:"size:255"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index:idx_message_match_created,priority:2,sort:desc"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// PersonalityDimension is one of the ten fixed scoring dimensions.
type PersonalityDimension string

const (
	DimOpenness              PersonalityDimension = "openness"
	DimConscientiousness     PersonalityDimension = "conscientiousness"
	DimExtraversion          PersonalityDimension = "extraversion"
	DimAgreeableness         PersonalityDimension = "agreeableness"
	DimNeuroticism           PersonalityDimension = "neuroticism"
	DimHumorStyle            PersonalityDimension = "humor_style"
	DimCommunicationStyle    PersonalityDimension = "communication_style"
	DimRelationshipGoals     PersonalityDimension = "relationship_goals"
	DimConflictResolution    PersonalityDimension = "conflict_resolution"
	DimEmotionalIntelligence PersonalityDimension = "emotional_intelligence"
)

// Dimensions lists every dimension in the fixed order used when quiz
// responses are partitioned. The order is load-bearing.
func Dimensions() []PersonalityDimension {
	return []PersonalityDimension{
		DimOpenness,
		DimConscientiousness,
		DimExtraversion,
		DimAgreeableness,
		DimNeuroticism,
		DimHumorStyle,
		DimCommunicationStyle,
		DimRelationshipGoals,
		DimConflictResolution,
		DimEmotionalIntelligence,
	}
}

type ScoreDetails struct {
	Responses []int    `json:"responses,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
	Traits    []string `json:"traits,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// PersonalityScore holds one user's score on one dimension.
// At most one row per (user, dimension): quiz resubmission deletes all of a
// user's rows before inserting the fresh set.
type PersonalityScore struct {
	ID         string               `gorm:"primaryKey;size:36"`
	UserID     string               `gorm:"size:36;not null;uniqueIndex:idx_score_user_dimension,priority:1"`
	Dimension  PersonalityDimension `gorm:"size:32;not null;uniqueIndex:idx_score_user_dimension,priority:2"`
	Score      float64              `gorm:"not null"`
	Confidence int                  `gorm:"not null"`
	Details    ScoreDetails         `gorm:"serializer:json"`
	CreatedAt  time.Time            `gorm:"autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"autoUpdateTime"`
}

func (s *PersonalityScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

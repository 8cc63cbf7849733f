package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedTestData resets the database and populates it with demo users,
// matches, messages and personality scores.
//
// Behavior:
//  1. Clears all four tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords and
//     sensible default preferences.
//  3. Pairs users into ~15 matches across statuses, with message history on
//     the active ones.
//  4. Gives every user a full ten-dimension personality profile.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"personality_scores", "messages", "matches", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	interests := []string{"travel", "music", "cooking", "hiking", "film", "reading", "fitness", "art"}
	var users []User
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := GenderMale
		if i > 10 {
			gender = GenderFemale
		}

		prefs := Preferences{MaxDistance: 50, GenderPreference: []Gender{}, DealBreakers: []string{}}
		prefs.AgeRange.Min = 18
		prefs.AgeRange.Max = 99

		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			FirstName:    fmt.Sprintf("User%d", i),
			LastName:     "Demo",
			Age:          21 + r.Intn(20),
			Gender:       gender,
			Interests:    []string{interests[r.Intn(len(interests))], interests[r.Intn(len(interests))]},
			Preferences:  prefs,
			PrivacySettings: PrivacySettings{
				ShowOnlineStatus:   true,
				AllowVoiceMessages: true,
				AllowVideoMessages: true,
			},
			Active: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Println("Seeded 20 users.")

	// --- Seed Matches (~15, mixed statuses) ---
	statuses := []MatchStatus{MatchActive, MatchActive, MatchActive, MatchPending, MatchArchived}
	var activeMatches []Match
	for i := 0; i < 15; i++ {
		u1 := users[r.Intn(10)]
		u2 := users[10+r.Intn(10)]

		var existing int64
		db.Model(&Match{}).
			Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
				u1.ID, u2.ID, u2.ID, u1.ID).
			Count(&existing)
		if existing > 0 {
			continue
		}

		expires := time.Now().UTC().Add(24 * time.Hour)
		match := Match{
			User1ID:          u1.ID,
			User2ID:          u2.ID,
			Status:           statuses[r.Intn(len(statuses))],
			User1RevealLevel: RevealPromptOnly,
			User2RevealLevel: RevealPromptOnly,
			ExpiresAt:        &expires,
			Metadata: MatchMetadata{
				InitialPrompt: "Tell me about your perfect weekend",
				Icebreakers:   []string{},
			},
		}
		if err := db.Create(&match).Error; err != nil {
			return fmt.Errorf("failed to seed match: %w", err)
		}
		if match.Status == MatchActive {
			activeMatches = append(activeMatches, match)
		}
	}
	log.Printf("Seeded matches (%d active).", len(activeMatches))

	// --- Seed Messages on active matches ---
	lines := []string{
		"Hey! How's your week going?",
		"That prompt answer made me laugh",
		"What kind of music are you into?",
		"I was just at that place last weekend!",
		"Coffee or tea person?",
	}
	for _, m := range activeMatches {
		count := 2 + r.Intn(6)
		for j := 0; j < count; j++ {
			sender := m.User1ID
			if j%2 == 1 {
				sender = m.User2ID
			}
			msg := Message{
				MatchID:  m.ID,
				SenderID: sender,
				Type:     MessageText,
				Content:  lines[r.Intn(len(lines))],
				Status:   MessageSent,
			}
			if err := db.Create(&msg).Error; err != nil {
				return fmt.Errorf("failed to seed message: %w", err)
			}
		}
		now := time.Now().UTC()
		m.MessageCount = count
		m.LastMessageAt = &now
		if err := db.Save(&m).Error; err != nil {
			return fmt.Errorf("failed to update seeded match: %w", err)
		}
	}
	log.Println("Seeded messages.")

	// --- Seed PersonalityScores (full profile per user) ---
	for _, u := range users {
		for _, dim := range Dimensions() {
			score := PersonalityScore{
				UserID:     u.ID,
				Dimension:  dim,
				Score:      float64(r.Intn(101)) / 100,
				Confidence: 75,
			}
			if err := db.Create(&score).Error; err != nil {
				return fmt.Errorf("failed to seed personality score: %w", err)
			}
		}
	}
	log.Println("Seeded personality scores.")

	return nil
}

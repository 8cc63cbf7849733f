package user

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
	"github.com/veilapp/veil-backend/internal/db"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/repository"
)

// RegisterInput carries the fields collected at signup.
type RegisterInput struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       int       `json:"age"`
	Gender    db.Gender `json:"gender"`
	Interests []string  `json:"interests"`
}

// ProfileInput carries the optional profile fields; nil leaves a field
// untouched.
type ProfileInput struct {
	Bio             *string   `json:"bio"`
	Interests       *[]string `json:"interests"`
	PromptAnswers   *[]string `json:"promptAnswers"`
	ProfilePhotoURL *string   `json:"profilePhotoUrl"`
}

// PreferencesInput replaces the discovery preferences.
type PreferencesInput struct {
	MinAge           int         `json:"minAge"`
	MaxAge           int         `json:"maxAge"`
	MaxDistance      int         `json:"maxDistance"`
	GenderPreference []db.Gender `json:"genderPreference"`
}

// Service owns account lifecycle: registration, login, profile and
// preference updates, discovery, soft deletion.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.UserRepository
	issuer *auth.TokenIssuer
}

// NewService creates the user service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, issuer *auth.TokenIssuer) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewUserRepository(appCtx.DB),
		issuer: issuer,
	}
}

// Register creates an account with a hashed password and the default
// preference/privacy sets. Duplicate email fails with AlreadyExists.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*db.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, svcErr.InvalidArgument("email and password are required")
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, svcErr.AlreadyExists("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Map(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	prefs := db.Preferences{MaxDistance: 50, GenderPreference: []db.Gender{}, DealBreakers: []string{}}
	prefs.AgeRange.Min = 18
	prefs.AgeRange.Max = 99

	user := &db.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Age:          input.Age,
		Gender:       input.Gender,
		Interests:    input.Interests,
		Preferences:  prefs,
		PrivacySettings: db.PrivacySettings{
			IncognitoMode:      false,
			ShowOnlineStatus:   true,
			AllowVoiceMessages: true,
			AllowVideoMessages: true,
		},
		Active: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("new user registered", "user", user.ID)
	return user, nil
}

// Login checks credentials and returns a signed bearer token. The durable
// online flag and last-seen flip as a side effect.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", svcErr.Unauthorized("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", svcErr.Unauthorized("invalid email or password")
	}

	now := time.Now().UTC()
	user.IsOnline = true
	user.LastSeen = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return "", svcErr.Map(err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user logged in", "user", user.ID)
	return token, nil
}

// Me returns the caller's own record.
func (s *Service) Me(ctx context.Context, callerID string) (*db.User, error) {
	user, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil profile fields.
func (s *Service) UpdateProfile(ctx context.Context, callerID string, input ProfileInput) (*db.User, error) {
	user, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Interests != nil {
		user.Interests = *input.Interests
	}
	if input.PromptAnswers != nil {
		user.PromptAnswers = *input.PromptAnswers
	}
	if input.ProfilePhotoURL != nil {
		user.ProfilePhotoURL = *input.ProfilePhotoURL
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("profile updated", "user", callerID)
	return user, nil
}

// UpdatePreferences replaces the caller's discovery preferences.
func (s *Service) UpdatePreferences(ctx context.Context, callerID string, input PreferencesInput) (*db.User, error) {
	if input.MinAge < 18 || input.MaxAge < input.MinAge {
		return nil, svcErr.InvalidArgument("invalid age range")
	}

	user, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	user.Preferences.AgeRange.Min = input.MinAge
	user.Preferences.AgeRange.Max = input.MaxAge
	user.Preferences.MaxDistance = input.MaxDistance
	user.Preferences.GenderPreference = input.GenderPreference

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("preferences updated", "user", callerID)
	return user, nil
}

// DiscoveryFeed returns active users within the caller's preferred age range.
func (s *Service) DiscoveryFeed(ctx context.Context, callerID string, limit int) ([]db.User, error) {
	if limit <= 0 {
		limit = 20
	}

	caller, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	users, err := s.repo.DiscoveryFeed(ctx, callerID, caller.Preferences.AgeRange.Min, caller.Preferences.AgeRange.Max, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return users, nil
}

// DeleteAccount soft-deletes the caller: active and online flags flip, the
// row is never removed.
func (s *Service) DeleteAccount(ctx context.Context, callerID string) error {
	err := s.repo.UpdateFields(ctx, callerID, map[string]interface{}{
		"active":    false,
		"is_online": false,
	})
	if err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("account deactivated", "user", callerID)
	return nil
}

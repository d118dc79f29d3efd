package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/models"
	"social-go/internal/storage"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the body of a sign-up request.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingInput is the profile a user fills in after signing up.
type OnboardingInput struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

// Session is a freshly issued session token and the user it belongs to.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Logout(ctx context.Context, caller auth.Caller) error
	Onboard(ctx context.Context, userID uint, input OnboardingInput) (*models.User, error)
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo  storage.UserRepository
	blacklist auth.TokenBlacklist
	chat      ChatService
	cfg       config.AuthConfig
	log       *logrus.Logger
}

// NewAuthService 创建一个新的 AuthService 实例。blacklist may be nil, in
// which case logout only clears the cookie.
func NewAuthService(userRepo storage.UserRepository, blacklist auth.TokenBlacklist, chat ChatService, cfg config.AuthConfig, log *logrus.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		blacklist: blacklist,
		chat:      chat,
		cfg:       cfg,
		log:       log,
	}
}

// Register creates an account with a random avatar and signs the user in.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}

	// 检查邮箱是否存在
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	} else if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		ProfilePic:   randomAvatarURL(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with another sign-up for the same address
		if storage.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.chat.UpsertUser(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to sync new user to chat")
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, caller auth.Caller) error {
	if s.blacklist == nil || caller.TokenID == "" {
		return nil
	}
	if err := s.blacklist.Add(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Onboard stores the profile and marks the user as onboarded, which makes
// them visible to recommendations and friend requests.
func (s *authService) Onboard(ctx context.Context, userID uint, input OnboardingInput) (*models.User, error) {
	fields := []struct{ name, value string }{
		{"fullName", input.FullName},
		{"bio", input.Bio},
		{"nativeLanguage", input.NativeLanguage},
		{"learningLanguage", input.LearningLanguage},
		{"location", input.Location},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	user.FullName = strings.TrimSpace(input.FullName)
	user.Bio = strings.TrimSpace(input.Bio)
	user.NativeLanguage = strings.TrimSpace(input.NativeLanguage)
	user.LearningLanguage = strings.TrimSpace(input.LearningLanguage)
	user.Location = strings.TrimSpace(input.Location)
	user.IsOnboarded = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	if err := s.chat.UpsertUser(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to sync onboarded user to chat")
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*Session, error) {
	token, claims, err := auth.GenerateToken(user.ID, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func randomAvatarURL() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.IntN(100)+1)
}

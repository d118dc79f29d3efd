package storage

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// UserRepository defines the interface for user directory operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.UserProfile, error)
	GetBasicInfoByIDs(ctx context.Context, ids []uint) (map[uint]models.UserBasicInfo, error)
	ListRecommendable(ctx context.Context, userID uint, limit int) ([]models.UserProfile, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record; the email is stored lower-cased.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by ID. Returns gorm.ErrRecordNotFound when missing.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves all fields of an existing user.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// GetProfilesByIDs loads profiles for ids, preserving the order of ids.
// Unknown ids are skipped.
func (r *gormUserRepository) GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.UserProfile, error) {
	profiles := make([]models.UserProfile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Select(models.ProfileColumns).
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}

// GetBasicInfoByIDs loads minimal profiles keyed by user ID.
func (r *gormUserRepository) GetBasicInfoByIDs(ctx context.Context, ids []uint) (map[uint]models.UserBasicInfo, error) {
	infos := make(map[uint]models.UserBasicInfo, len(ids))
	if len(ids) == 0 {
		return infos, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "full_name", "profile_pic", "native_language", "learning_language").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		infos[users[i].ID] = users[i].BasicInfo()
	}
	return infos, nil
}

// ListRecommendable returns onboarded users that are not userID, not already
// friends with userID, and not on either side of a friend request with
// userID. Ordered by id so identical data yields identical pages.
func (r *gormUserRepository) ListRecommendable(ctx context.Context, userID uint, limit int) ([]models.UserProfile, error) {
	friendIDs := r.db.Model(&models.Friendship{}).
		Select("friend_id").
		Where("user_id = ?", userID)
	sentTo := r.db.Model(&models.FriendRequest{}).
		Select("recipient_id").
		Where("sender_id = ?", userID)
	receivedFrom := r.db.Model(&models.FriendRequest{}).
		Select("sender_id").
		Where("recipient_id = ?", userID)

	var users []models.User
	err := r.db.WithContext(ctx).
		Select(models.ProfileColumns).
		Where("id <> ?", userID).
		Where("is_onboarded = ?", true).
		Where("id NOT IN (?)", friendIDs).
		Where("id NOT IN (?)", sentTo).
		Where("id NOT IN (?)", receivedFrom).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	profiles := make([]models.UserProfile, len(users))
	for i := range users {
		profiles[i] = users[i].Profile()
	}
	return profiles, nil
}

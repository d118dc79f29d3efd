package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// FriendshipRepository stores the materialized friend lists.
type FriendshipRepository interface {
	// CreatePair inserts both directions of a friendship in one statement.
	CreatePair(ctx context.Context, userID1, userID2, requestID uint) error
	AreUsersFriends(ctx context.Context, userID, otherID uint) (bool, error)
	// GetFriendIDs returns userID's friends in the order they were added.
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

func (r *gormFriendshipRepository) CreatePair(ctx context.Context, userID1, userID2, requestID uint) error {
	pair := models.FriendshipPair(userID1, userID2, requestID)
	return r.db.WithContext(ctx).Create(&pair).Error
}

// AreUsersFriends checks whether otherID is in userID's friend list.
func (r *gormFriendshipRepository) AreUsersFriends(ctx context.Context, userID, otherID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormFriendshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	friendIDs := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("friend_id", &friendIDs).Error
	if err != nil {
		return nil, err
	}
	return friendIDs, nil
}

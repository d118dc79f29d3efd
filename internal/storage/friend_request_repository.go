package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	FindBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error)
	// MarkAccepted flips a pending request to accepted. It reports false when
	// the request was no longer pending.
	MarkAccepted(ctx context.Context, requestID uint) (bool, error)
	ListByRecipient(ctx context.Context, recipientID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error)
	ListBySender(ctx context.Context, senderID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

// NewGormFriendRequestRepository creates a GORM-backed FriendRequestRepository.
func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

// Create inserts a request. A second request for the same unordered pair
// fails on idx_friend_request_pair with gorm.ErrDuplicatedKey.
func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	request.PairLowID, request.PairHighID = models.OrderedPair(request.SenderID, request.RecipientID)
	return r.db.WithContext(ctx).Create(request).Error
}

// FindBetween returns the request between two users in either direction,
// or nil when there is none.
func (r *gormFriendRequestRepository) FindBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	low, high := models.OrderedPair(userID1, userID2)
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("pair_low_id = ? AND pair_high_id = ?", low, high).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetRequestByID returns gorm.ErrRecordNotFound for unknown ids.
func (r *gormFriendRequestRepository) GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) MarkAccepted(ctx context.Context, requestID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, models.FriendRequestStatusPending).
		Update("status", models.FriendRequestStatusAccepted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByRecipient lists requests addressed to recipientID, newest first.
func (r *gormFriendRequestRepository) ListByRecipient(ctx context.Context, recipientID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", recipientID, status).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error
	return requests, err
}

// ListBySender lists requests sent by senderID, newest first.
func (r *gormFriendRequestRepository) ListBySender(ctx context.Context, senderID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", senderID, status).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error
	return requests, err
}

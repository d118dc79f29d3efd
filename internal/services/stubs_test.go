package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
)

type userRepoStub struct {
	createFn            func(context.Context, *models.User) error
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	updateFn            func(context.Context, *models.User) error
	getProfilesByIDsFn  func(context.Context, []uint) ([]models.UserProfile, error)
	getBasicInfoByIDsFn func(context.Context, []uint) (map[uint]models.UserBasicInfo, error)
	listRecommendableFn func(context.Context, uint, int) ([]models.UserProfile, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.UserProfile, error) {
	return s.getProfilesByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetBasicInfoByIDs(ctx context.Context, ids []uint) (map[uint]models.UserBasicInfo, error) {
	return s.getBasicInfoByIDsFn(ctx, ids)
}
func (s *userRepoStub) ListRecommendable(ctx context.Context, userID uint, limit int) ([]models.UserProfile, error) {
	return s.listRecommendableFn(ctx, userID, limit)
}

type friendshipRepoStub struct {
	createPairFn      func(context.Context, uint, uint, uint) error
	areUsersFriendsFn func(context.Context, uint, uint) (bool, error)
	getFriendIDsFn    func(context.Context, uint) ([]uint, error)
}

func (s *friendshipRepoStub) CreatePair(ctx context.Context, a, b, requestID uint) error {
	return s.createPairFn(ctx, a, b, requestID)
}
func (s *friendshipRepoStub) AreUsersFriends(ctx context.Context, a, b uint) (bool, error) {
	return s.areUsersFriendsFn(ctx, a, b)
}
func (s *friendshipRepoStub) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.getFriendIDsFn(ctx, userID)
}

func TestRecommendPassesClampedLimit(t *testing.T) {
	var gotLimit int
	users := &userRepoStub{
		listRecommendableFn: func(_ context.Context, _ uint, limit int) ([]models.UserProfile, error) {
			gotLimit = limit
			return []models.UserProfile{}, nil
		},
	}
	graph := NewSocialGraphService(users, &friendshipRepoStub{}, nil, nil, config.SocialConfig{
		DefaultRecommendationLimit: 20,
		MaxRecommendationLimit:     100,
	}, logging.Discard())

	_, err := graph.Recommend(context.Background(), 1, 5000)
	assert.NoError(t, err)
	assert.Equal(t, 100, gotLimit)
}

func TestSendFriendRequestWrapsStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	users := &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) { return nil, boom },
	}
	graph := NewSocialGraphService(users, &friendshipRepoStub{}, nil, nil, config.SocialConfig{}, logging.Discard())

	_, err := graph.SendFriendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSendFriendRequestUnknownTarget(t *testing.T) {
	users := &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
	}
	graph := NewSocialGraphService(users, &friendshipRepoStub{}, nil, nil, config.SocialConfig{}, logging.Discard())

	_, err := graph.SendFriendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFriendRequestFriendshipLookupFails(t *testing.T) {
	boom := errors.New("timeout")
	friendships := &friendshipRepoStub{
		areUsersFriendsFn: func(context.Context, uint, uint) (bool, error) { return false, boom },
	}
	ledger := NewFriendRequestService(nil, &userRepoStub{}, nil, friendships, logging.Discard())

	_, err := ledger.Create(context.Background(), 1, 2)
	assert.ErrorIs(t, err, boom)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"social-go/internal/config"
	"social-go/internal/metrics"
	"social-go/internal/models"
	"social-go/internal/socialtypes"
	"social-go/internal/storage"
)

// SocialGraphService is the entry point for friend graph reads and writes.
// Every method takes the acting user explicitly.
type SocialGraphService interface {
	Recommend(ctx context.Context, userID uint, limit int) ([]models.UserProfile, error)
	FriendsOf(ctx context.Context, userID uint) ([]models.UserProfile, error)
	SendFriendRequest(ctx context.Context, actingUserID, targetID uint) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, actingUserID, requestID uint) (*models.FriendRequest, error)
	IncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
	OutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
	AcceptedRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
}

type socialGraphService struct {
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	ledger         FriendRequestService
	events         socialtypes.FriendEventPublisher
	cfg            config.SocialConfig
	log            *logrus.Logger
}

// NewSocialGraphService wires the graph engine. events may be nil.
func NewSocialGraphService(
	userRepo storage.UserRepository,
	friendshipRepo storage.FriendshipRepository,
	ledger FriendRequestService,
	events socialtypes.FriendEventPublisher,
	cfg config.SocialConfig,
	log *logrus.Logger,
) SocialGraphService {
	if events == nil {
		events = socialtypes.NoopFriendEventPublisher{}
	}
	return &socialGraphService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		ledger:         ledger,
		events:         events,
		cfg:            cfg,
		log:            log,
	}
}

// Recommend lists onboarded strangers: not userID, not a friend, and not on
// either side of a friend request with userID.
func (s *socialGraphService) Recommend(ctx context.Context, userID uint, limit int) ([]models.UserProfile, error) {
	profiles, err := s.userRepo.ListRecommendable(ctx, userID, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations for %d: %w", userID, err)
	}
	return profiles, nil
}

func (s *socialGraphService) clampLimit(limit int) int {
	defLimit, maxLimit := s.cfg.DefaultRecommendationLimit, s.cfg.MaxRecommendationLimit
	if defLimit <= 0 {
		defLimit = 20
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if defLimit > maxLimit {
		defLimit = maxLimit
	}
	switch {
	case limit <= 0:
		return defLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

// FriendsOf returns userID's friends in the order the friendships were made.
func (s *socialGraphService) FriendsOf(ctx context.Context, userID uint) ([]models.UserProfile, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends of %d: %w", userID, err)
	}
	profiles, err := s.userRepo.GetProfilesByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profiles of %d: %w", userID, err)
	}
	return profiles, nil
}

// SendFriendRequest requires the target to exist and be onboarded.
func (s *socialGraphService) SendFriendRequest(ctx context.Context, actingUserID, targetID uint) (*models.FriendRequest, error) {
	request, err := s.sendFriendRequest(ctx, actingUserID, targetID)
	if err != nil {
		metrics.IncFriendRequest(metrics.StatusFailed)
		return nil, err
	}
	metrics.IncFriendRequest(metrics.StatusSuccess)
	s.publish(ctx, socialtypes.FriendRequestCreated, request)
	return request, nil
}

func (s *socialGraphService) sendFriendRequest(ctx context.Context, actingUserID, targetID uint) (*models.FriendRequest, error) {
	if actingUserID == targetID {
		return nil, ErrInvalidTarget
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("recipient %d: %w", targetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load recipient %d: %w", targetID, err)
	}
	if !target.IsOnboarded {
		return nil, fmt.Errorf("recipient %d is not onboarded: %w", targetID, ErrNotFound)
	}

	return s.ledger.Create(ctx, actingUserID, targetID)
}

func (s *socialGraphService) AcceptFriendRequest(ctx context.Context, actingUserID, requestID uint) (*models.FriendRequest, error) {
	request, err := s.ledger.Accept(ctx, requestID, actingUserID)
	if err != nil {
		metrics.IncFriendAccept(metrics.StatusFailed)
		return nil, err
	}
	metrics.IncFriendAccept(metrics.StatusSuccess)
	s.publish(ctx, socialtypes.FriendRequestAccepted, request)
	return request, nil
}

func (s *socialGraphService) IncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	return s.ledger.ListIncoming(ctx, userID)
}

func (s *socialGraphService) OutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	return s.ledger.ListOutgoing(ctx, userID)
}

func (s *socialGraphService) AcceptedRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	return s.ledger.ListAccepted(ctx, userID)
}

// publish runs after the mutation committed; failures are only logged.
func (s *socialGraphService) publish(ctx context.Context, eventType socialtypes.FriendEventType, request *models.FriendRequest) {
	event := socialtypes.FriendEvent{
		Type:        eventType,
		RequestID:   request.ID,
		SenderID:    request.SenderID,
		RecipientID: request.RecipientID,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.events.PublishFriendEvent(ctx, event); err != nil {
		metrics.IncEventPublishFailure()
		s.log.WithError(err).WithFields(logrus.Fields{
			"type":       eventType,
			"request_id": request.ID,
		}).Error("failed to publish friend event")
	}
}

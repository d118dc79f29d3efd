package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"social-go/internal/models"
	"social-go/internal/storage"
)

// FriendRequestService owns friend request records and the
// pending -> accepted transition.
type FriendRequestService interface {
	Create(ctx context.Context, senderID, recipientID uint) (*models.FriendRequest, error)
	Accept(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
	ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
	ListAccepted(ctx context.Context, userID uint) ([]models.FriendRequestView, error)
}

type friendRequestService struct {
	db             *gorm.DB // for transactions
	userRepo       storage.UserRepository
	friendRepo     storage.FriendRequestRepository
	friendshipRepo storage.FriendshipRepository
	log            *logrus.Logger
}

// NewFriendRequestService creates a new FriendRequestService instance.
func NewFriendRequestService(
	db *gorm.DB,
	userRepo storage.UserRepository,
	friendRepo storage.FriendRequestRepository,
	friendshipRepo storage.FriendshipRepository,
	log *logrus.Logger,
) FriendRequestService {
	return &friendRequestService{
		db:             db,
		userRepo:       userRepo,
		friendRepo:     friendRepo,
		friendshipRepo: friendshipRepo,
		log:            log,
	}
}

// Create records a pending request from senderID to recipientID.
// The unique pair index settles races between concurrent creates for the
// same pair; the loser gets ErrDuplicateRequest.
func (s *friendRequestService) Create(ctx context.Context, senderID, recipientID uint) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrInvalidTarget
	}

	areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship %d-%d: %w", senderID, recipientID, err)
	}
	if areFriends {
		return nil, ErrAlreadyFriends
	}

	existing, err := s.friendRepo.FindBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request %d-%d: %w", senderID, recipientID, err)
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	request := models.NewFriendRequest(senderID, recipientID)
	if err := s.friendRepo.Create(ctx, request); err != nil {
		if storage.IsDuplicateKey(err) {
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   request.ID,
		"sender_id":    senderID,
		"recipient_id": recipientID,
	}).Info("friend request created")
	return request, nil
}

// Accept flips a pending request to accepted and links both users as
// friends, all in one transaction.
func (s *friendRequestService) Accept(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	var accepted *models.FriendRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := storage.NewGormFriendRequestRepository(tx)
		friendships := storage.NewGormFriendshipRepository(tx)

		request, err := requests.GetRequestByID(ctx, requestID)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load friend request %d: %w", requestID, err)
		}
		if request.RecipientID != actingUserID {
			return ErrForbidden
		}
		if !request.IsPending() {
			return ErrInvalidState
		}

		// Compare-and-set: a concurrent accept that got here first leaves
		// nothing to update.
		updated, err := requests.MarkAccepted(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to accept friend request %d: %w", requestID, err)
		}
		if !updated {
			return ErrInvalidState
		}

		if err := friendships.CreatePair(ctx, request.SenderID, request.RecipientID, request.ID); err != nil {
			// A friendship row for the pair already exists. The request
			// itself stays pending once the transaction rolls back.
			if storage.IsDuplicateKey(err) {
				return fmt.Errorf("%w: friendship for request %d already recorded: %w", ErrAlreadyFriends, requestID, err)
			}
			return fmt.Errorf("failed to create friendship for request %d: %w", requestID, err)
		}

		request.Status = models.FriendRequestStatusAccepted
		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": accepted.ID,
		"sender_id":  accepted.SenderID,
		"user_id":    actingUserID,
	}).Info("friend request accepted")
	return accepted, nil
}

// ListIncoming returns pending requests addressed to userID, newest first,
// each carrying the sender's profile.
func (s *friendRequestService) ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendRepo.ListByRecipient(ctx, userID, models.FriendRequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests for %d: %w", userID, err)
	}
	return s.views(ctx, requests, true)
}

// ListOutgoing returns pending requests userID sent, newest first, each
// carrying the recipient's profile.
func (s *friendRequestService) ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendRepo.ListBySender(ctx, userID, models.FriendRequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests for %d: %w", userID, err)
	}
	return s.views(ctx, requests, false)
}

// ListAccepted returns requests userID sent that have been accepted.
func (s *friendRequestService) ListAccepted(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendRepo.ListBySender(ctx, userID, models.FriendRequestStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted requests for %d: %w", userID, err)
	}
	return s.views(ctx, requests, false)
}

// views attaches the sender's (withSender) or recipient's basic profile.
func (s *friendRequestService) views(ctx context.Context, requests []models.FriendRequest, withSender bool) ([]models.FriendRequestView, error) {
	views := make([]models.FriendRequestView, 0, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	ids := make([]uint, len(requests))
	for i, r := range requests {
		if withSender {
			ids[i] = r.SenderID
		} else {
			ids[i] = r.RecipientID
		}
	}
	infos, err := s.userRepo.GetBasicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load request profiles: %w", err)
	}

	for i, r := range requests {
		view := models.FriendRequestView{FriendRequest: r}
		info, ok := infos[ids[i]]
		if !ok {
			// keep the request visible, just without the profile
			s.log.WithFields(logrus.Fields{"user_id": ids[i], "request_id": r.ID}).Warn("friend request references missing user")
			views = append(views, view)
			continue
		}
		if withSender {
			view.Sender = &info
		} else {
			view.Recipient = &info
		}
		views = append(views, view)
	}
	return views, nil
}

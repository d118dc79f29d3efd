package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"social-go/internal/models"
	"social-go/internal/socialtypes"
	"social-go/internal/storage"
)

// ProfilePictureService replaces and removes a user's profile picture.
type ProfilePictureService interface {
	Upload(ctx context.Context, userID uint, file io.Reader, size int64, fileName, mimeType string) (*models.User, error)
	Remove(ctx context.Context, userID uint) (*models.User, error)
}

type profilePictureService struct {
	userRepo storage.UserRepository
	store    socialtypes.StorageService
	maxBytes int64
	log      *logrus.Logger
}

// NewProfilePictureService creates the service. maxBytes <= 0 disables the size check.
func NewProfilePictureService(userRepo storage.UserRepository, store socialtypes.StorageService, maxBytes int64, log *logrus.Logger) ProfilePictureService {
	return &profilePictureService{userRepo: userRepo, store: store, maxBytes: maxBytes, log: log}
}

// Upload stores an image and points the user's profile at it. The previous
// picture is deleted afterwards, best effort.
func (s *profilePictureService) Upload(ctx context.Context, userID uint, file io.Reader, size int64, fileName, mimeType string) (*models.User, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: only image files are allowed", ErrInvalidInput)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: file too large, max %d bytes", ErrInvalidInput, s.maxBytes)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	info, err := s.store.UploadFile(ctx, file, size, fileName, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	previousKey := user.ProfilePicKey
	user.ProfilePic = info.URL
	user.ProfilePicKey = info.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.deleteObject(ctx, info.Key)
		return nil, fmt.Errorf("failed to save profile picture for %d: %w", userID, err)
	}

	if previousKey != "" {
		s.deleteObject(ctx, previousKey)
	}
	return user, nil
}

// Remove clears the user's profile picture.
func (s *profilePictureService) Remove(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePic == "" && user.ProfilePicKey == "" {
		return nil, fmt.Errorf("%w: no profile picture to remove", ErrInvalidInput)
	}

	if user.ProfilePicKey != "" {
		if err := s.store.DeleteFile(ctx, user.ProfilePicKey); err != nil {
			return nil, fmt.Errorf("failed to delete profile picture: %w", err)
		}
	}
	user.ProfilePic = ""
	user.ProfilePicKey = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to clear profile picture for %d: %w", userID, err)
	}
	return user, nil
}

func (s *profilePictureService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user, nil
}

func (s *profilePictureService) deleteObject(ctx context.Context, key string) {
	if err := s.store.DeleteFile(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to delete stored profile picture")
	}
}

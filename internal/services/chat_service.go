package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/models"
)

// ChatService is the seam to the chat backend. Messages are not stored here;
// the service only keeps users known to chat and mints tokens for the
// notification socket.
type ChatService interface {
	UpsertUser(ctx context.Context, user *models.User) error
	Token(ctx context.Context, userID uint) (string, error)
}

type chatService struct {
	cfg config.AuthConfig
	log *logrus.Logger
}

// NewChatService creates the local chat stub.
func NewChatService(cfg config.AuthConfig, log *logrus.Logger) ChatService {
	return &chatService{cfg: cfg, log: log}
}

func (s *chatService) UpsertUser(_ context.Context, user *models.User) error {
	s.log.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"full_name": user.FullName,
	}).Debug("chat user upserted")
	return nil
}

// Token returns a short-lived token accepted only by the chat server.
func (s *chatService) Token(_ context.Context, userID uint) (string, error) {
	token, _, err := auth.GenerateChatToken(userID, s.cfg)
	if err != nil {
		return "", fmt.Errorf("failed to issue chat token: %w", err)
	}
	return token, nil
}

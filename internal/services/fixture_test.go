package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
	"social-go/internal/socialtypes"
	"social-go/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []socialtypes.FriendEvent
	err    error
}

func (p *recordingPublisher) PublishFriendEvent(_ context.Context, event socialtypes.FriendEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []socialtypes.FriendEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]socialtypes.FriendEvent(nil), p.events...)
}

// fixture wires the real GORM repositories over an in-memory SQLite database.
type fixture struct {
	db          *gorm.DB
	users       storage.UserRepository
	requests    storage.FriendRequestRepository
	friendships storage.FriendshipRepository
	ledger      FriendRequestService
	graph       SocialGraphService
	events      *recordingPublisher
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.InitDB(config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := logging.Discard()

	f := &fixture{
		db:          db,
		users:       storage.NewGormUserRepository(db),
		requests:    storage.NewGormFriendRequestRepository(db),
		friendships: storage.NewGormFriendshipRepository(db),
		events:      &recordingPublisher{},
	}
	f.ledger = NewFriendRequestService(db, f.users, f.requests, f.friendships, log)
	f.graph = NewSocialGraphService(f.users, f.friendships, f.ledger, f.events, config.SocialConfig{
		DefaultRecommendationLimit: 20,
		MaxRecommendationLimit:     100,
	}, log)
	return f
}

func (f *fixture) newUser(t *testing.T, name string, onboarded bool) *models.User {
	t.Helper()
	u := &models.User{
		Email:            fmt.Sprintf("%s@example.com", name),
		FullName:         name,
		PasswordHash:     "x",
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		IsOnboarded:      onboarded,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	ctx := context.Background()
	req, err := f.ledger.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.ledger.Accept(ctx, req.ID, b.ID)
	require.NoError(t, err)
}

func profileIDs(profiles []models.UserProfile) []uint {
	ids := make([]uint, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

func (f *fixture) countRequests(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.FriendRequest{}).Count(&n).Error)
	return n
}

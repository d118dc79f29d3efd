package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
	"social-go/internal/socialtypes"
)

func TestRecommendExcludesSelfFriendsAndRequested(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	friend := f.newUser(t, "friend", true)
	sentTo := f.newUser(t, "sent-to", true)
	receivedFrom := f.newUser(t, "received-from", true)
	stranger := f.newUser(t, "stranger", true)
	f.newUser(t, "not-onboarded", false)

	f.befriend(t, a, friend)
	_, err := f.ledger.Create(ctx, a.ID, sentTo.ID)
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, receivedFrom.ID, a.ID)
	require.NoError(t, err)

	recs, err := f.graph.Recommend(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{stranger.ID}, profileIDs(recs))
}

func TestRecommendIsStableAndBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	for _, name := range []string{"b", "c", "d", "e"} {
		f.newUser(t, name, true)
	}

	first, err := f.graph.Recommend(ctx, a.ID, 3)
	require.NoError(t, err)
	second, err := f.graph.Recommend(ctx, a.ID, 3)
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, profileIDs(first), profileIDs(second))

	all, err := f.graph.Recommend(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestClampLimit(t *testing.T) {
	s := &socialGraphService{cfg: config.SocialConfig{DefaultRecommendationLimit: 20, MaxRecommendationLimit: 100}}
	assert.Equal(t, 20, s.clampLimit(0))
	assert.Equal(t, 20, s.clampLimit(-5))
	assert.Equal(t, 1, s.clampLimit(1))
	assert.Equal(t, 100, s.clampLimit(1000))

	unset := &socialGraphService{}
	assert.Equal(t, 20, unset.clampLimit(0))
	assert.Equal(t, 100, unset.clampLimit(500))
}

func TestSendFriendRequestTargetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	pending := f.newUser(t, "pending", false)

	_, err := f.graph.SendFriendRequest(ctx, a.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.graph.SendFriendRequest(ctx, a.ID, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.graph.SendFriendRequest(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	assert.Zero(t, f.countRequests(t))
	assert.Empty(t, f.events.Events())
}

// A, B, C, D onboarded; A asks B; B accepts.
func TestScenarioRequestAcceptRecommend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	b := f.newUser(t, "b", true)
	c := f.newUser(t, "c", true)
	d := f.newUser(t, "d", true)

	req, err := f.graph.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	recs, err := f.graph.Recommend(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{c.ID, d.ID}, profileIDs(recs))

	_, err = f.graph.AcceptFriendRequest(ctx, b.ID, req.ID)
	require.NoError(t, err)

	aFriends, err := f.graph.FriendsOf(ctx, a.ID)
	require.NoError(t, err)
	bFriends, err := f.graph.FriendsOf(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, profileIDs(aFriends))
	assert.Equal(t, []uint{a.ID}, profileIDs(bFriends))

	recs, err = f.graph.Recommend(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{c.ID, d.ID}, profileIDs(recs))

	events := f.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, socialtypes.FriendRequestCreated, events[0].Type)
	assert.Equal(t, b.ID, events[0].NotifyUserID())
	assert.Equal(t, socialtypes.FriendRequestAccepted, events[1].Type)
	assert.Equal(t, a.ID, events[1].NotifyUserID())
}

func TestScenarioBystanderCannotAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	b := f.newUser(t, "b", true)
	c := f.newUser(t, "c", true)

	req, err := f.graph.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = f.graph.AcceptFriendRequest(ctx, c.ID, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	incoming, err := f.graph.IncomingRequests(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, models.FriendRequestStatusPending, incoming[0].Status)
}

func TestScenarioDoubleSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	b := f.newUser(t, "b", true)

	_, err := f.graph.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.graph.SendFriendRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	assert.Equal(t, int64(1), f.countRequests(t))
	out, err := f.graph.OutgoingRequests(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Len(t, f.events.Events(), 1)
}

func TestPublishFailureDoesNotUndoMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a", true)
	b := f.newUser(t, "b", true)

	failing := &recordingPublisher{err: errors.New("broker down")}
	graph := NewSocialGraphService(f.users, f.friendships, f.ledger, failing, config.SocialConfig{}, logging.Discard())

	req, err := graph.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = graph.AcceptFriendRequest(ctx, b.ID, req.ID)
	require.NoError(t, err)

	accepted, err := graph.AcceptedRequests(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	assert.Len(t, failing.Events(), 2)
}

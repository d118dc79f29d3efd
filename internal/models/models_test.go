package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFriendRequestOrdersPair(t *testing.T) {
	r := NewFriendRequest(9, 3)
	assert.Equal(t, uint(3), r.PairLowID)
	assert.Equal(t, uint(9), r.PairHighID)
	assert.True(t, r.IsPending())
	assert.Equal(t, uint(3), r.Counterpart(9))
	assert.Equal(t, uint(9), r.Counterpart(3))
}

func TestUserProfileHidesPrivateFields(t *testing.T) {
	u := &User{Email: "a@example.com", FullName: "A", PasswordHash: "hash", ProfilePicKey: "key"}
	u.ID = 4

	data, err := json.Marshal(u.Profile())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "a@example.com")
	assert.NotContains(t, string(data), "hash")

	data, err = json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "key")
}

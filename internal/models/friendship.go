package models

import "time"

// Friendship is one direction of a friendship: FriendID appears in UserID's
// friend list. An accepted request always produces both directions in the
// same transaction, so the relation is symmetric.
type Friendship struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_users" json:"userId"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_users;index" json:"friendId"`
	RequestID uint      `gorm:"not null;index" json:"requestId"` // request that created it
	CreatedAt time.Time `json:"createdAt"`
}

// TableName pins the table name.
func (Friendship) TableName() string {
	return "friendships"
}

// FriendshipPair returns both directions for users a and b.
func FriendshipPair(a, b, requestID uint) []Friendship {
	return []Friendship{
		{UserID: a, FriendID: b, RequestID: requestID},
		{UserID: b, FriendID: a, RequestID: requestID},
	}
}

package models

// FriendRequestStatus 定义好友请求的状态
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a directed proposal from sender to recipient.
// PairLowID/PairHighID hold the unordered pair and carry a unique index:
// there is no path that removes a request, so every stored row is active and
// the index alone guarantees one request per pair.
type FriendRequest struct {
	BaseModel
	SenderID    uint                `gorm:"not null;index:idx_friend_request_sender" json:"senderId"`
	RecipientID uint                `gorm:"not null;index:idx_friend_request_recipient" json:"recipientId"`
	Status      FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PairLowID   uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
	PairHighID  uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
}

// NewFriendRequest builds a pending request with its pair key filled in.
func NewFriendRequest(senderID, recipientID uint) *FriendRequest {
	low, high := OrderedPair(senderID, recipientID)
	return &FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      FriendRequestStatusPending,
		PairLowID:   low,
		PairHighID:  high,
	}
}

// IsPending reports whether the request can still be accepted.
func (r *FriendRequest) IsPending() bool {
	return r.Status == FriendRequestStatusPending
}

// Counterpart returns the other side of the request relative to userID.
func (r *FriendRequest) Counterpart(userID uint) uint {
	if r.SenderID == userID {
		return r.RecipientID
	}
	return r.SenderID
}

// OrderedPair returns (min, max).
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// FriendRequestView is a request enriched with the profiles of both sides.
// Only the side relevant to the listing is populated.
type FriendRequestView struct {
	FriendRequest
	Sender    *UserBasicInfo `json:"sender,omitempty"`
	Recipient *UserBasicInfo `json:"recipient,omitempty"`
}

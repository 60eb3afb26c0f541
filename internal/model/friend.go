package model

import (
	"errors"
	"time"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a request between two users as reported by the server.
// Outgoing requests carry the recipient; incoming ones carry the sender.
type FriendRequest struct {
	ID        string              `json:"_id"`
	Sender    User                `json:"sender"`
	Recipient User                `json:"recipient"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

// RecipientID returns the id of the user the request was sent to.
func (r FriendRequest) RecipientID() string {
	return r.Recipient.ID
}

// FriendRequestsResponse is the notifications payload: requests waiting on
// the current user and requests the current user sent that got accepted.
type FriendRequestsResponse struct {
	IncomingReqs []FriendRequest `json:"incomingReqs"`
	AcceptedReqs []FriendRequest `json:"acceptedReqs"`
}

// RecommendedUser is a recommended learner annotated with the state of the
// "send request" affordance.
type RecommendedUser struct {
	User
	RequestSent bool `json:"requestSent"`
	Disabled    bool `json:"disabled"`
}

var (
	ErrRequestAlreadySent = errors.New("friend request already sent")
	ErrRequestInFlight    = errors.New("another friend request is being sent")
	ErrInvalidRecipient   = errors.New("invalid recipient")
)

// Friend request API error codes (used in HTTP responses)
const (
	CodeRequestAlreadySent = "REQUEST_ALREADY_SENT"
	CodeRequestInFlight    = "REQUEST_IN_FLIGHT"
)

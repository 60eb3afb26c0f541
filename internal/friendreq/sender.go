package friendreq

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"ubae_shell/internal/model"
)

// RequestSender is the upstream "send friend request" mutation.
type RequestSender interface {
	SendFriendRequest(ctx context.Context, recipientID string) error
}

// Affordance is the state of the "send request" button for one recipient.
type Affordance struct {
	Sent     bool `json:"sent"`
	Disabled bool `json:"disabled"`
}

// Sender runs the send mutation and reports its outcome to the reconciler.
// At most one send is in flight at a time.
type Sender struct {
	api        RequestSender
	reconciler *Reconciler
	inFlight   atomic.Bool
}

func NewSender(api RequestSender, reconciler *Reconciler) *Sender {
	return &Sender{api: api, reconciler: reconciler}
}

// Send sends a request to recipientID. It refuses while another send is in
// flight and when the index already holds recipientID. On failure the error
// is returned for display and the index is left untouched.
func (s *Sender) Send(ctx context.Context, recipientID string) error {
	if recipientID == "" {
		return model.ErrInvalidRecipient
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return model.ErrRequestInFlight
	}
	defer s.inFlight.Store(false)

	if s.reconciler.HasPendingRequestTo(recipientID) {
		return model.ErrRequestAlreadySent
	}

	if err := s.api.SendFriendRequest(ctx, recipientID); err != nil {
		log.Printf("[Sender] SendFriendRequest FAILED: recipient=%s err=%v", recipientID, err)
		return fmt.Errorf("send friend request: %w", err)
	}

	log.Printf("[Sender] SendFriendRequest OK: recipient=%s", recipientID)
	s.reconciler.OnSendSucceeded()
	return nil
}

// IsPending reports whether any send is in flight.
func (s *Sender) IsPending() bool {
	return s.inFlight.Load()
}

// Affordance combines index membership with the in-flight flag.
func (s *Sender) Affordance(recipientID string) Affordance {
	sent := s.reconciler.HasPendingRequestTo(recipientID)
	return Affordance{
		Sent:     sent,
		Disabled: sent || s.IsPending(),
	}
}

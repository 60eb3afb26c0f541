package service

import (
	"context"
	"fmt"
	"log"

	"ubae_shell/internal/friendreq"
	"ubae_shell/internal/model"
	"ubae_shell/internal/query"
)

// FriendAPI is the upstream surface for friends and friend requests.
type FriendAPI interface {
	GetUserFriends(ctx context.Context) ([]model.User, error)
	GetRecommendedUsers(ctx context.Context) ([]model.User, error)
	GetOutgoingFriendReqs(ctx context.Context) ([]model.FriendRequest, error)
	GetFriendRequests(ctx context.Context) (*model.FriendRequestsResponse, error)
	SendFriendRequest(ctx context.Context, recipientID string) error
	AcceptFriendRequest(ctx context.Context, requestID string) error
}

// HomeView is the data behind the home page. Loading flags are true while
// the matching query has no outcome yet.
type HomeView struct {
	Friends            []model.User            `json:"friends"`
	LoadingFriends     bool                    `json:"loadingFriends"`
	RecommendedUsers   []model.RecommendedUser `json:"recommendedUsers"`
	LoadingUsers       bool                    `json:"loadingUsers"`
	SendRequestPending bool                    `json:"sendRequestPending"`
}

// NotificationsView is the data behind the notifications page.
type NotificationsView struct {
	IncomingRequests []model.FriendRequest `json:"incomingRequests"`
	AcceptedRequests []model.FriendRequest `json:"acceptedRequests"`
	Loading          bool                  `json:"loading"`
}

type FriendService struct {
	store       *query.Store
	api         FriendAPI
	invalidator query.Invalidator
	reconciler  *friendreq.Reconciler
	sender      *friendreq.Sender
}

func NewFriendService(
	store *query.Store,
	api FriendAPI,
	invalidator query.Invalidator,
	reconciler *friendreq.Reconciler,
	sender *friendreq.Sender,
) *FriendService {
	return &FriendService{
		store:       store,
		api:         api,
		invalidator: invalidator,
		reconciler:  reconciler,
		sender:      sender,
	}
}

// Home mounts the home page queries and returns their current view.
func (s *FriendService) Home() HomeView {
	s.store.Ensure(query.KeyFriends)
	s.store.Ensure(query.KeyRecommendedUsers)
	s.store.Ensure(query.KeyOutgoingFriendReqs)

	friendsState := s.store.State(query.KeyFriends)
	usersState := s.store.State(query.KeyRecommendedUsers)

	friends, _ := query.Value[[]model.User](friendsState)
	users, _ := query.Value[[]model.User](usersState)

	recommended := make([]model.RecommendedUser, 0, len(users))
	for _, u := range users {
		aff := s.sender.Affordance(u.ID)
		recommended = append(recommended, model.RecommendedUser{
			User:        u,
			RequestSent: aff.Sent,
			Disabled:    aff.Disabled,
		})
	}

	if friends == nil {
		friends = []model.User{}
	}

	return HomeView{
		Friends:            friends,
		LoadingFriends:     friendsState.IsLoading(),
		RecommendedUsers:   recommended,
		LoadingUsers:       usersState.IsLoading(),
		SendRequestPending: s.sender.IsPending(),
	}
}

// Notifications mounts the friend-requests query and returns its view.
func (s *FriendService) Notifications() NotificationsView {
	s.store.Ensure(query.KeyFriendRequests)
	state := s.store.State(query.KeyFriendRequests)

	view := NotificationsView{
		IncomingRequests: []model.FriendRequest{},
		AcceptedRequests: []model.FriendRequest{},
		Loading:          state.IsLoading(),
	}
	if resp, ok := query.Value[*model.FriendRequestsResponse](state); ok && resp != nil {
		if resp.IncomingReqs != nil {
			view.IncomingRequests = resp.IncomingReqs
		}
		if resp.AcceptedReqs != nil {
			view.AcceptedRequests = resp.AcceptedReqs
		}
	}
	return view
}

// OutgoingRecipients lists the users the current user has a pending request to.
func (s *FriendService) OutgoingRecipients() []string {
	s.store.Ensure(query.KeyOutgoingFriendReqs)
	return s.reconciler.Index().IDs()
}

// SendRequest sends a request to recipientID. The sender refuses it when the
// affordance would be disabled.
func (s *FriendService) SendRequest(ctx context.Context, recipientID string) error {
	if err := validateID(recipientID); err != nil {
		return err
	}
	return s.sender.Send(ctx, recipientID)
}

// AcceptRequest accepts an incoming request and refreshes the lists it changes.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID string) error {
	if err := validateID(requestID); err != nil {
		return err
	}
	if err := s.api.AcceptFriendRequest(ctx, requestID); err != nil {
		log.Printf("[FriendService] AcceptFriendRequest FAILED: request=%s err=%v", requestID, err)
		return fmt.Errorf("accept friend request: %w", err)
	}

	log.Printf("[FriendService] AcceptFriendRequest OK: request=%s", requestID)
	s.invalidator.Invalidate(query.KeyFriendRequests)
	s.invalidator.Invalidate(query.KeyFriends)
	return nil
}

// validateID refuses ids that cannot name a single upstream path segment.
func validateID(id string) error {
	switch id {
	case "", ".", "..":
		return model.ErrInvalidRecipient
	}
	return nil
}

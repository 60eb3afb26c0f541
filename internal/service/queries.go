package service

import (
	"context"

	"ubae_shell/internal/model"
	"ubae_shell/internal/query"
)

// UpstreamAPI is every query and mutation the shell needs from the server.
// *api.Client implements it.
type UpstreamAPI interface {
	AuthAPI
	FriendAPI
}

// RegisterQueries binds each well-known key to its upstream fetch.
func RegisterQueries(store *query.Store, api UpstreamAPI) {
	query.Register(store, query.KeyAuthUser, api.GetAuthUser)
	query.Register(store, query.KeyFriends, api.GetUserFriends)
	query.Register(store, query.KeyRecommendedUsers, api.GetRecommendedUsers)
	query.Register(store, query.KeyOutgoingFriendReqs, api.GetOutgoingFriendReqs)
	query.Register(store, query.KeyFriendRequests, func(ctx context.Context) (*model.FriendRequestsResponse, error) {
		return api.GetFriendRequests(ctx)
	})
}

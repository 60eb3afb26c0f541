package api

import (
	"context"
	"net/url"

	"ubae_shell/internal/model"
)

// pathSegment escapes id for use as one path segment. Dot segments are
// refused since joining would resolve them against the parent path.
func pathSegment(id string) (string, error) {
	switch id {
	case "", ".", "..":
		return "", model.ErrInvalidRecipient
	}
	return url.PathEscape(id), nil
}

func (c *Client) GetRecommendedUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUserFriends(ctx context.Context) ([]model.User, error) {
	var friends []model.User
	if err := c.get(ctx, "/users/friends", &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) GetOutgoingFriendReqs(ctx context.Context) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	if err := c.get(ctx, "/users/outgoing-friend-requests", &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) SendFriendRequest(ctx context.Context, recipientID string) error {
	seg, err := pathSegment(recipientID)
	if err != nil {
		return err
	}
	return c.post(ctx, "/users/friend-request/"+seg, nil, nil)
}

func (c *Client) GetFriendRequests(ctx context.Context) (*model.FriendRequestsResponse, error) {
	var resp model.FriendRequestsResponse
	if err := c.get(ctx, "/users/friend-requests", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, requestID string) error {
	seg, err := pathSegment(requestID)
	if err != nil {
		return err
	}
	return c.put(ctx, "/users/friend-request/"+seg+"/accept", nil, nil)
}

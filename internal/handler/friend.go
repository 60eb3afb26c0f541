package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ubae_shell/internal/httputil"
	"ubae_shell/internal/model"
	"ubae_shell/internal/service"
)

// FriendFlows is the friend-request surface of the friend service.
type FriendFlows interface {
	Home() service.HomeView
	Notifications() service.NotificationsView
	OutgoingRecipients() []string
	SendRequest(ctx context.Context, recipientID string) error
	AcceptRequest(ctx context.Context, requestID string) error
}

// OutgoingResponse lists the recipients of the user's pending requests.
type OutgoingResponse struct {
	RecipientIDs []string `json:"recipientIds"`
}

type FriendHandler struct {
	friends FriendFlows
}

func NewFriendHandler(friends FriendFlows) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// Outgoing returns the outgoing-request index.
// GET /api/friend-requests/outgoing
func (h *FriendHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, OutgoingResponse{
		RecipientIDs: h.friends.OutgoingRecipients(),
	})
}

// Send sends a friend request to the user in the path.
// POST /api/friend-requests/{id}
func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "id")

	err := h.friends.SendRequest(r.Context(), recipientID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, model.ErrInvalidRecipient):
		httputil.WriteBadRequest(w, "Recipient is required")
	case errors.Is(err, model.ErrRequestAlreadySent):
		httputil.WriteConflictWithCode(w, model.CodeRequestAlreadySent, "Friend request already sent")
	case errors.Is(err, model.ErrRequestInFlight):
		httputil.WriteConflictWithCode(w, model.CodeRequestInFlight, "Another friend request is being sent")
	default:
		writeUpstreamError(w, "SendFriendRequest", err)
	}
}

// Accept accepts an incoming friend request.
// PUT /api/friend-requests/{id}/accept
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	err := h.friends.AcceptRequest(r.Context(), requestID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, model.ErrInvalidRecipient):
		httputil.WriteBadRequest(w, "Request id is required")
	default:
		writeUpstreamError(w, "AcceptFriendRequest", err)
	}
}

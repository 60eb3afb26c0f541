package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ubae_shell/internal/model"
)

// =============================================================================
// Fake upstream
// =============================================================================

type upstream struct {
	*httptest.Server
	meCalls   atomic.Int32
	meStatus  int
	tokenTTL  time.Duration
	sendCalls atomic.Int32
	sendPath  atomic.Value
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(ttl).Unix(),
	})
	s, err := token.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{meStatus: http.StatusOK, tokenTTL: time.Hour}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req model.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "secret1" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid email or password"})
				return
			}
			http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: signedToken(t, u.tokenTTL), Path: "/", HttpOnly: true})
			writeJSON(w, http.StatusOK, model.AuthResponse{Success: true, User: &model.User{ID: "u1", Email: req.Email}})
		})
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			u.meCalls.Add(1)
			if _, err := r.Cookie(SessionCookie); err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized - No token provided"})
				return
			}
			if u.meStatus != http.StatusOK {
				writeJSON(w, u.meStatus, map[string]string{"message": "Internal Server Error"})
				return
			}
			writeJSON(w, http.StatusOK, model.AuthResponse{Success: true, User: &model.User{ID: "u1", IsOnboarded: true}})
		})
		r.Get("/users/outgoing-friend-requests", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []model.FriendRequest{
				{ID: "r1", Recipient: model.User{ID: "u2", FullName: "Bea"}, Status: model.FriendRequestPending},
			})
		})
		r.Post("/users/friend-request/{id}", func(w http.ResponseWriter, r *http.Request) {
			u.sendCalls.Add(1)
			u.sendPath.Store(r.URL.EscapedPath())
			if chi.URLParam(r, "id") == "u2" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "A friend request already exists between you and this user"})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"_id": "r9"})
		})
		r.Put("/users/friend-request/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream proxy error"))
		})
	})

	u.Server = httptest.NewServer(r)
	t.Cleanup(u.Close)
	return u
}

func newTestClient(t *testing.T, u *upstream) *Client {
	t.Helper()
	c, err := NewClient(u.URL+"/api/", 2*time.Second)
	require.NoError(t, err)
	return c
}

// =============================================================================
// Tests
// =============================================================================

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("/api", time.Second)
	assert.Error(t, err)
}

func TestGetAuthUser_NoCookieSkipsRequest(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	user, err := c.GetAuthUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, int32(0), u.meCalls.Load())
}

func TestGetAuthUser_AfterLogin(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	loggedIn, err := c.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", loggedIn.Email)

	user, err := c.GetAuthUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsOnboarded)
	assert.Equal(t, int32(1), u.meCalls.Load())
}

func TestGetAuthUser_ExpiredCookieSkipsRequest(t *testing.T) {
	u := newUpstream(t)
	u.tokenTTL = -time.Minute
	c := newTestClient(t, u)

	_, err := c.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := c.GetAuthUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, int32(0), u.meCalls.Load())
}

func TestGetAuthUser_ServerErrorIsReturned(t *testing.T) {
	u := newUpstream(t)
	u.meStatus = http.StatusInternalServerError
	c := newTestClient(t, u)

	_, err := c.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = c.GetAuthUser(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestLogin_BadCredentials(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	_, err := c.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "nope"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsClientError())
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestGetOutgoingFriendReqs(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	reqs, err := c.GetOutgoingFriendReqs(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "u2", reqs[0].RecipientID())
}

func TestSendFriendRequest(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	require.NoError(t, c.SendFriendRequest(context.Background(), "u3"))

	err := c.SendFriendRequest(context.Background(), "u2")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "already exists")
}

func TestSendFriendRequest_EscapesRecipient(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	require.NoError(t, c.SendFriendRequest(context.Background(), "a/b c"))
	assert.Equal(t, "/api/users/friend-request/a%2Fb%20c", u.sendPath.Load())
}

func TestFriendRequestCalls_RejectDotSegments(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	for _, id := range []string{"", ".", ".."} {
		assert.ErrorIs(t, c.SendFriendRequest(context.Background(), id), model.ErrInvalidRecipient, "id=%q", id)
		assert.ErrorIs(t, c.AcceptFriendRequest(context.Background(), id), model.ErrInvalidRecipient, "id=%q", id)
	}
	assert.Zero(t, u.sendCalls.Load())
}

func TestError_NonJSONBodyAndIs(t *testing.T) {
	u := newUpstream(t)
	c := newTestClient(t, u)

	err := c.AcceptFriendRequest(context.Background(), "r1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream proxy error", apiErr.Message)
	assert.False(t, errors.Is(err, model.ErrUnauthorized))

	unauthorized := parseError(http.StatusUnauthorized, nil)
	assert.ErrorIs(t, unauthorized, model.ErrUnauthorized)
	assert.Equal(t, "upstream returned 401", unauthorized.Error())
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"ubae_shell/internal/httputil"
	"ubae_shell/internal/model"
	"ubae_shell/internal/session"
)

// AuthFlows is the session mutation surface of the auth service.
type AuthFlows interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)
	Logout(ctx context.Context) error
	CompleteOnboarding(ctx context.Context, req *model.OnboardingRequest) (*model.User, error)
}

// SessionAwaiter waits for the current-user query to settle.
type SessionAwaiter interface {
	Await(ctx context.Context) (session.Session, error)
}

// AuthResult is returned by every auth mutation. Session is the state the
// guard will use for the next navigation.
type AuthResult struct {
	Success bool            `json:"success"`
	User    *model.User     `json:"user,omitempty"`
	Session session.Session `json:"session"`
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	auth     AuthFlows
	sessions SessionAwaiter
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(auth AuthFlows, sessions SessionAwaiter) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
	}
}

// Signup creates an account and logs it in.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.auth.Signup(r.Context(), &req)
	if err != nil {
		writeUpstreamError(w, "Signup", err)
		return
	}
	h.respond(w, r, http.StatusCreated, user)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorizedWithCode(w, model.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		writeUpstreamError(w, "Login", err)
		return
	}
	h.respond(w, r, http.StatusOK, user)
}

// Logout ends the session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		writeUpstreamError(w, "Logout", err)
		return
	}
	h.respond(w, r, http.StatusOK, nil)
}

// CompleteOnboarding submits the onboarding form.
// POST /api/auth/onboarding
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req model.OnboardingRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.auth.CompleteOnboarding(r.Context(), &req)
	if err != nil {
		writeUpstreamError(w, "CompleteOnboarding", err)
		return
	}
	h.respond(w, r, http.StatusOK, user)
}

// respond waits for the current-user refetch the mutation triggered so the
// client's next navigation is guarded against the new session.
func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	s, err := h.sessions.Await(r.Context())
	if err != nil {
		// The mutation succeeded; report the session as still loading.
		s = session.Session{Loading: true}
	}
	httputil.WriteJSON(w, status, AuthResult{
		Success: true,
		User:    user,
		Session: s,
	})
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ubae_shell/internal/httputil"
	"ubae_shell/internal/model"
)

// Page names
const (
	PageHome          = "home"
	PageNotifications = "notifications"
	PageChat          = "chat"
	PageSignup        = "signup"
	PageLogin         = "login"
	PageOnboarding    = "onboarding"
)

// PageResponse is what a guarded page renders to.
type PageResponse struct {
	Page   string      `json:"page"`
	User   *model.User `json:"user,omitempty"`
	Params interface{} `json:"params,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

type chatParams struct {
	ID string `json:"id"`
}

// PageHandler renders the pages behind the route guard. By the time a
// method runs the guard has already allowed the page.
type PageHandler struct {
	sessions SessionReader
	friends  FriendFlows
}

func NewPageHandler(sessions SessionReader, friends FriendFlows) *PageHandler {
	return &PageHandler{
		sessions: sessions,
		friends:  friends,
	}
}

// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageHome, nil, h.friends.Home())
}

// GET /notifications
func (h *PageHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageNotifications, nil, h.friends.Notifications())
}

// GET /chat/{id}
func (h *PageHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageChat, chatParams{ID: chi.URLParam(r, "id")}, nil)
}

// GET /signup
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageSignup, nil, nil)
}

// GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageLogin, nil, nil)
}

// GET /onboarding
func (h *PageHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	h.render(w, PageOnboarding, nil, nil)
}

// For returns the handler rendering the page named name. Unknown names get
// NotFound.
func (h *PageHandler) For(name string) http.HandlerFunc {
	switch name {
	case PageHome:
		return h.Home
	case PageNotifications:
		return h.Notifications
	case PageChat:
		return h.Chat
	case PageSignup:
		return h.Signup
	case PageLogin:
		return h.Login
	case PageOnboarding:
		return h.Onboarding
	default:
		return h.NotFound
	}
}

// NotFound only runs if the guard ever renders an undeclared path.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFound(w, "Page not found")
}

func (h *PageHandler) render(w http.ResponseWriter, page string, params, data interface{}) {
	httputil.WriteJSON(w, http.StatusOK, PageResponse{
		Page:   page,
		User:   h.sessions.Current().AuthUser,
		Params: params,
		Data:   data,
	})
}

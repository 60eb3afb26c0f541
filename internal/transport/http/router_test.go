package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ubae_shell/internal/guard"
	"ubae_shell/internal/handler"
	"ubae_shell/internal/model"
	"ubae_shell/internal/service"
	"ubae_shell/internal/session"
)

type stubSessions struct{ s session.Session }

func (s *stubSessions) Current() session.Session { return s.s }
func (s *stubSessions) Await(context.Context) (session.Session, error) {
	return s.s, nil
}

type stubAuth struct{}

func (stubAuth) Signup(context.Context, *model.SignupRequest) (*model.User, error) {
	return &model.User{ID: "u1"}, nil
}
func (stubAuth) Login(context.Context, *model.LoginRequest) (*model.User, error) {
	return &model.User{ID: "u1"}, nil
}
func (stubAuth) Logout(context.Context) error { return nil }
func (stubAuth) CompleteOnboarding(context.Context, *model.OnboardingRequest) (*model.User, error) {
	return &model.User{ID: "u1", IsOnboarded: true}, nil
}

type stubFriends struct{}

func (stubFriends) Home() service.HomeView                   { return service.HomeView{} }
func (stubFriends) Notifications() service.NotificationsView { return service.NotificationsView{} }
func (stubFriends) OutgoingRecipients() []string             { return []string{} }
func (stubFriends) SendRequest(context.Context, string) error   { return nil }
func (stubFriends) AcceptRequest(context.Context, string) error { return nil }

func newTestRouter(s session.Session) stdhttp.Handler {
	sessions := &stubSessions{s: s}
	return NewRouter(RouterConfig{
		NavigationHandler: handler.NewNavigationHandler(sessions),
		AuthHandler:       handler.NewAuthHandler(stubAuth{}, sessions),
		FriendHandler:     handler.NewFriendHandler(stubFriends{}),
		PageHandler:       handler.NewPageHandler(sessions, stubFriends{}),
		Sessions:          sessions,
		AllowedOrigins:    []string{"http://localhost:*"},
	})
}

func serve(h stdhttp.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := serve(newTestRouter(session.Session{}), stdhttp.MethodGet, "/health")

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_GuardedPages(t *testing.T) {
	ready := session.Session{AuthUser: &model.User{ID: "u1", IsOnboarded: true}}
	anon := session.Session{}

	tests := []struct {
		name         string
		session      session.Session
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"ready home", ready, "/", stdhttp.StatusOK, ""},
		{"ready chat", ready, "/chat/abc", stdhttp.StatusOK, ""},
		{"anonymous notifications", anon, "/notifications", stdhttp.StatusFound, "/login"},
		{"anonymous login", anon, "/login", stdhttp.StatusOK, ""},
		{"undeclared path", anon, "/does/not/exist", stdhttp.StatusFound, "/"},
		{"trailing slash", anon, "/login/", stdhttp.StatusMovedPermanently, "/login"},
		{"loading", session.Session{Loading: true}, "/onboarding", stdhttp.StatusAccepted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestRouter(tt.session), stdhttp.MethodGet, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}

func TestRouter_EveryDeclaredRouteRendersItsPage(t *testing.T) {
	sessions := map[guard.Requirement]session.Session{
		guard.RequireReady:      {AuthUser: &model.User{ID: "u1", IsOnboarded: true}},
		guard.RequireAnonymous:  {},
		guard.RequireOnboarding: {AuthUser: &model.User{ID: "u1"}},
	}

	for _, route := range guard.Routes() {
		t.Run(route.Name, func(t *testing.T) {
			path := strings.Replace(route.Pattern, "{id}", "abc", 1)
			rec := serve(newTestRouter(sessions[route.Requirement]), stdhttp.MethodGet, path)
			require.Equal(t, stdhttp.StatusOK, rec.Code)

			var page handler.PageResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
			assert.Equal(t, route.Name, page.Page)
		})
	}
}

func TestRouter_APIIsNotGuarded(t *testing.T) {
	r := newTestRouter(session.Session{})

	rec := serve(r, stdhttp.MethodGet, "/api/session")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = serve(r, stdhttp.MethodPost, "/api/friend-requests/u9")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = serve(r, stdhttp.MethodGet, "/api/nope")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(session.Session{})

	req := httptest.NewRequest(stdhttp.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", stdhttp.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Less(t, rec.Code, 300)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(session.Session{})
	serve(r, stdhttp.MethodGet, "/")

	rec := serve(r, stdhttp.MethodGet, "/metrics")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shell_guard_decisions_total")
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ubae_shell/internal/model"
	"ubae_shell/internal/session"
)

type fixedSession session.Session

func (f fixedSession) Current() session.Session { return session.Session(f) }

func rendered() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page"))
	})
}

func TestGuard(t *testing.T) {
	ready := fixedSession{AuthUser: &model.User{ID: "u1", IsOnboarded: true}}
	newbie := fixedSession{AuthUser: &model.User{ID: "u1"}}
	anon := fixedSession{}
	loading := fixedSession{Loading: true}

	tests := []struct {
		name         string
		session      fixedSession
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"ready renders home", ready, "/", http.StatusOK, ""},
		{"ready renders chat", ready, "/chat/42", http.StatusOK, ""},
		{"anonymous home goes to login", anon, "/", http.StatusFound, "/login"},
		{"anonymous renders signup", anon, "/signup", http.StatusOK, ""},
		{"not onboarded home goes to onboarding", newbie, "/notifications", http.StatusFound, "/onboarding"},
		{"ready login goes home", ready, "/login", http.StatusFound, "/"},
		{"unknown path goes home", ready, "/nope", http.StatusFound, "/"},
		{"loading shows loader", loading, "/notifications", http.StatusAccepted, ""},
		{"trailing slash moves to canonical page", anon, "/login/", http.StatusMovedPermanently, "/login"},
		{"trailing slash keeps the query", ready, "/chat/42/?call=1", http.StatusMovedPermanently, "/chat/42?call=1"},
		{"trailing slash on a rejected page redirects to fallback", ready, "/login/", http.StatusFound, "/"},
		{"path case is significant", anon, "/Login", http.StatusFound, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Guard(tt.session)(rendered())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}

func TestGuard_LoaderBody(t *testing.T) {
	h := Guard(fixedSession{Loading: true})(rendered())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"loading":true,"path":"/"}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

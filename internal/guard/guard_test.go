package guard

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ubae_shell/internal/session"
)

var levels = []session.AccessLevel{session.Unauthenticated, session.NeedsOnboarding, session.Ready}

// One concrete path per route pattern, plus the catch-all.
var samplePaths = []string{"/", "/notifications", "/chat/42", "/signup", "/login", "/onboarding", "/garbage-path"}

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		path  string
		level session.AccessLevel
		want  Action
	}{
		{"/", session.Unauthenticated, Redirect("/login")},
		{"/", session.NeedsOnboarding, Redirect("/onboarding")},
		{"/", session.Ready, Render("/")},

		{"/notifications", session.Unauthenticated, Redirect("/login")},
		{"/notifications", session.NeedsOnboarding, Redirect("/onboarding")},
		{"/notifications", session.Ready, Render("/notifications")},

		{"/chat/42", session.Unauthenticated, Redirect("/login")},
		{"/chat/42", session.NeedsOnboarding, Redirect("/onboarding")},
		{"/chat/42", session.Ready, Render("/chat/42")},

		{"/signup", session.Unauthenticated, Render("/signup")},
		{"/signup", session.NeedsOnboarding, Redirect("/")},
		{"/signup", session.Ready, Redirect("/")},

		{"/login", session.Unauthenticated, Render("/login")},
		{"/login", session.NeedsOnboarding, Redirect("/onboarding")},
		{"/login", session.Ready, Redirect("/")},

		{"/onboarding", session.Unauthenticated, Redirect("/login")},
		{"/onboarding", session.NeedsOnboarding, Render("/onboarding")},
		{"/onboarding", session.Ready, Redirect("/")},

		{"/garbage-path", session.Unauthenticated, Redirect("/")},
		{"/garbage-path", session.NeedsOnboarding, Redirect("/")},
		{"/garbage-path", session.Ready, Redirect("/")},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s as %s", tt.path, tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.path, tt.level, false))
		})
	}
}

func TestDecide_LoadingAlwaysShowsLoader(t *testing.T) {
	paths := append([]string{"", "/chat/", "/login/", "/x/y/z"}, samplePaths...)
	for _, path := range paths {
		for _, level := range levels {
			assert.Equal(t, ShowLoader(), Decide(path, level, true), "path=%q level=%s", path, level)
		}
	}
}

func TestDecide_PathsNotDeclaredFallThrough(t *testing.T) {
	for _, path := range []string{"/chat", "/chat/", "/chat/1/extra", "/Login", "/CHAT/1", "/call", "/notifications/x"} {
		assert.Equal(t, Redirect("/"), Decide(path, session.Ready, false), "path=%q", path)
	}
}

func TestDecide_TrailingSlashNamesTheSamePage(t *testing.T) {
	assert.Equal(t, Render("/login"), Decide("/login/", session.Unauthenticated, false))
	assert.Equal(t, Render("/chat/abc"), Decide("/chat/abc/", session.Ready, false))
	assert.Equal(t, Render("/"), Decide("//", session.Ready, false))
	assert.Equal(t, Redirect("/"), Decide("/login//", session.Ready, false))

	route, ok := Match("/notifications/")
	require.True(t, ok)
	assert.Equal(t, "notifications", route.Name)
}

func TestDecide_IgnoresQueryString(t *testing.T) {
	assert.Equal(t, Render("/login"), Decide("/login?next=/chat/1", session.Unauthenticated, false))
	assert.Equal(t, Render("/"), Decide("", session.Ready, false))
}

func TestSettle_Scenarios(t *testing.T) {
	tests := []struct {
		path     string
		level    session.AccessLevel
		wantHops []string
		want     Action
	}{
		{"/", session.Unauthenticated, []string{"/login"}, Render("/login")},
		{"/onboarding", session.NeedsOnboarding, []string{}, Render("/onboarding")},
		{"/onboarding", session.Ready, []string{"/"}, Render("/")},
		{"/signup", session.Ready, []string{"/"}, Render("/")},
		{"/garbage-path", session.Unauthenticated, []string{"/", "/login"}, Render("/login")},
		{"/signup", session.NeedsOnboarding, []string{"/", "/onboarding"}, Render("/onboarding")},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s as %s", tt.path, tt.level), func(t *testing.T) {
			nav, err := Settle(tt.path, tt.level, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHops, nav.Hops)
			assert.Equal(t, tt.want, nav.Final)
		})
	}
}

// Every (route, level) pair must settle on a rendered page without cycling.
// The route table is small enough to check every combination.
func TestSettle_EveryPairTerminates(t *testing.T) {
	for _, path := range samplePaths {
		for _, level := range levels {
			nav, err := Settle(path, level, false)
			require.NoError(t, err, "path=%s level=%s", path, level)
			assert.Equal(t, KindRender, nav.Final.Kind, "path=%s level=%s", path, level)
			assert.LessOrEqual(t, len(nav.Hops), 2, "path=%s level=%s hops=%v", path, level, nav.Hops)

			// The rendered page is visible at this level.
			route, ok := Match(nav.Final.Path)
			require.True(t, ok)
			assert.True(t, route.Allows(level))
		}
	}
}

// Redirect targets are always declared routes, so one hop past any redirect
// is never another catch-all.
func TestRoutes_FallbacksAreDeclared(t *testing.T) {
	for _, route := range Routes() {
		for _, level := range levels {
			if route.Allows(level) {
				continue
			}
			target := route.Fallback(level)
			_, ok := Match(target)
			assert.True(t, ok, "route %s falls back to undeclared %s at %s", route.Name, target, level)
			assert.NotEqual(t, route.Pattern, target, "route %s redirects to itself at %s", route.Name, level)
		}
	}
}

func TestRoutes_EachLevelSeesSomePage(t *testing.T) {
	for _, level := range levels {
		visible := 0
		for _, route := range Routes() {
			if route.Allows(level) {
				visible++
			}
		}
		assert.Positive(t, visible, "level %s cannot see any page", level)
	}
}

func TestSettle_LoadingDoesNotFollowRedirects(t *testing.T) {
	nav, err := Settle("/garbage-path", session.Unauthenticated, true)
	require.NoError(t, err)
	assert.Equal(t, ShowLoader(), nav.Final)
	assert.Empty(t, nav.Hops)
}

func TestMatch(t *testing.T) {
	route, ok := Match("/chat/abc")
	require.True(t, ok)
	assert.Equal(t, "chat", route.Name)

	_, ok = Match("/nowhere")
	assert.False(t, ok)
}

func TestAction_JSON(t *testing.T) {
	raw, err := json.Marshal(Redirect("/login"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"redirect","path":"/login"}`, string(raw))

	raw, err = json.Marshal(ShowLoader())
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"loader"}`, string(raw))
}

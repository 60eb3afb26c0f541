package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ubae_shell/internal/session"
)

// Page paths the guard redirects to.
const (
	PathHome          = "/"
	PathLogin         = "/login"
	PathSignup        = "/signup"
	PathOnboarding    = "/onboarding"
	PathNotifications = "/notifications"
	PatternChat       = "/chat/{id}"
)

// Requirement is the visibility predicate of a route.
type Requirement int

const (
	// RequireReady: authenticated and onboarded.
	RequireReady Requirement = iota
	// RequireAnonymous: not authenticated.
	RequireAnonymous
	// RequireOnboarding: authenticated and not yet onboarded.
	RequireOnboarding
)

// Route is one declared page.
type Route struct {
	Name        string
	Pattern     string
	Requirement Requirement
	// fallback picks the redirect target when the predicate fails.
	fallback func(level session.AccessLevel) string
}

// Allows reports whether a session at level may see the route.
func (r Route) Allows(level session.AccessLevel) bool {
	switch r.Requirement {
	case RequireReady:
		return level == session.Ready
	case RequireAnonymous:
		return level == session.Unauthenticated
	case RequireOnboarding:
		return level == session.NeedsOnboarding
	default:
		return false
	}
}

// Fallback returns the redirect target for a level the route rejects.
func (r Route) Fallback(level session.AccessLevel) string {
	return r.fallback(level)
}

func loginOrOnboarding(level session.AccessLevel) string {
	if level == session.Unauthenticated {
		return PathLogin
	}
	return PathOnboarding
}

func homeOrOnboarding(level session.AccessLevel) string {
	if level == session.Ready {
		return PathHome
	}
	return PathOnboarding
}

func loginOrHome(level session.AccessLevel) string {
	if level == session.Unauthenticated {
		return PathLogin
	}
	return PathHome
}

func home(session.AccessLevel) string {
	return PathHome
}

var routes = []Route{
	{Name: "home", Pattern: PathHome, Requirement: RequireReady, fallback: loginOrOnboarding},
	{Name: "notifications", Pattern: PathNotifications, Requirement: RequireReady, fallback: loginOrOnboarding},
	{Name: "chat", Pattern: PatternChat, Requirement: RequireReady, fallback: loginOrOnboarding},
	{Name: "signup", Pattern: PathSignup, Requirement: RequireAnonymous, fallback: home},
	{Name: "login", Pattern: PathLogin, Requirement: RequireAnonymous, fallback: homeOrOnboarding},
	{Name: "onboarding", Pattern: PathOnboarding, Requirement: RequireOnboarding, fallback: loginOrHome},
}

// Routes returns the declared page routes.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// table resolves a concrete path to its declared route using chi's routing
// tree, so /chat/{id} matches exactly the paths the shell router serves.
type table struct {
	mux    *chi.Mux
	byPatt map[string]Route
}

var declared = newTable(routes)

func newTable(rs []Route) *table {
	t := &table{
		mux:    chi.NewMux(),
		byPatt: make(map[string]Route, len(rs)),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range rs {
		t.mux.Get(r.Pattern, noop)
		t.byPatt[r.Pattern] = r
	}
	return t
}

// lookup returns the route for path; ok is false for the catch-all.
func (t *table) lookup(path string) (Route, bool) {
	pattern := t.mux.Find(chi.NewRouteContext(), http.MethodGet, path)
	r, ok := t.byPatt[pattern]
	return r, ok
}

// Match returns the declared route serving path, or false when path falls
// through to the catch-all.
func Match(path string) (Route, bool) {
	return declared.lookup(normalize(path))
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Trailing slashes name the same page. Matching stays case-sensitive.
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return PathHome
}

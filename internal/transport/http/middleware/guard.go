package middleware

import (
	"log"
	"net/http"

	"ubae_shell/internal/guard"
	"ubae_shell/internal/httputil"
	"ubae_shell/internal/metrics"
	"ubae_shell/internal/session"
)

// SessionSource yields the current session snapshot.
type SessionSource interface {
	Current() session.Session
}

// routeNameNotFound labels navigations that fall through to the catch-all.
const routeNameNotFound = "notFound"

// redirectCanonical sends a page spelled with a trailing slash to its
// declared path, keeping the query string.
func redirectCanonical(w http.ResponseWriter, r *http.Request, path string) {
	target := path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// Guard evaluates the route guard for every page request. Render passes the
// request on, Redirect answers 302 to the fallback page and ShowLoader
// answers 202 with a loader body. A rendered page reached through a
// non-canonical path answers 301 to the canonical one.
func Guard(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := sessions.Current()
			action := guard.Decide(r.URL.Path, s.AccessLevel(), s.Loading)

			routeName := routeNameNotFound
			if route, ok := guard.Match(r.URL.Path); ok {
				routeName = route.Name
			}
			metrics.RecordGuardDecision(routeName, action.Kind.String())

			switch action.Kind {
			case guard.KindRender:
				if action.Path != r.URL.Path {
					redirectCanonical(w, r, action.Path)
					return
				}
				next.ServeHTTP(w, r)
			case guard.KindRedirect:
				log.Printf("[Guard] Redirect: path=%s level=%s target=%s", r.URL.Path, s.AccessLevel(), action.Path)
				http.Redirect(w, r, action.Path, http.StatusFound)
			case guard.KindShowLoader:
				httputil.WriteLoader(w, r.URL.Path)
			default:
				httputil.WriteInternalError(w, "Unknown guard decision")
			}
		})
	}
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ubae_shell/internal/guard"
	"ubae_shell/internal/handler"
	"ubae_shell/internal/httputil"
	"ubae_shell/internal/metrics"
	shellmw "ubae_shell/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	NavigationHandler *handler.NavigationHandler
	AuthHandler       *handler.AuthHandler
	FriendHandler     *handler.FriendHandler
	PageHandler       *handler.PageHandler
	Sessions          shellmw.SessionSource
	AllowedOrigins    []string
}

// NewRouter creates the shell router: guarded pages at the root, the
// unguarded JSON API under /api.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(shellmw.CORS(cfg.AllowedOrigins))

		r.Get("/session", cfg.NavigationHandler.Session)
		r.Get("/navigate", cfg.NavigationHandler.Navigate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Post("/onboarding", cfg.AuthHandler.CompleteOnboarding)
		})

		r.Route("/friend-requests", func(r chi.Router) {
			r.Get("/outgoing", cfg.FriendHandler.Outgoing)
			r.Post("/{id}", cfg.FriendHandler.Send)
			r.Put("/{id}/accept", cfg.FriendHandler.Accept)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteNotFound(w, "Unknown API endpoint")
		})
	})

	guarded := shellmw.Guard(cfg.Sessions)
	r.Group(func(r chi.Router) {
		r.Use(guarded)

		for _, route := range guard.Routes() {
			r.Get(route.Pattern, cfg.PageHandler.For(route.Name))
		}
	})

	// Undeclared paths still go through the guard, which redirects them home.
	r.NotFound(guarded(http.HandlerFunc(cfg.PageHandler.NotFound)).ServeHTTP)

	return r
}

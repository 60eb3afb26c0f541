package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ubae_shell/internal/api"
	"ubae_shell/internal/config"
	"ubae_shell/internal/friendreq"
	"ubae_shell/internal/handler"
	"ubae_shell/internal/query"
	"ubae_shell/internal/queue"
	"ubae_shell/internal/redis"
	"ubae_shell/internal/service"
	"ubae_shell/internal/session"
	"ubae_shell/internal/worker"
)

const (
	redisConnectTimeout = 5 * time.Second
	shutdownTimeout     = 10 * time.Second
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Upstream API client and query store
	client, err := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	store := query.NewStore(ctx)
	defer store.Close()
	service.RegisterQueries(store, client)

	// 3. Cross-instance invalidation (optional)
	var publisher queue.Publisher
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL, redisConnectTimeout)
		if err != nil {
			log.Printf("[Server] Redis unavailable, invalidations stay local: err=%v", err)
		} else {
			defer rdb.Close()
			publisher = queue.NewPublisher(rdb.Client)

			manager := worker.NewManager(
				queue.NewConsumer(rdb.Client),
				worker.NewHandler(store, cfg.InstanceID),
				worker.DefaultManagerConfig(cfg.InstanceID),
			)
			if err := manager.Start(ctx); err != nil {
				return fmt.Errorf("failed to start invalidation workers: %w", err)
			}
			defer manager.Stop()
		}
	}
	invalidator := service.NewBroadcastInvalidator(store, publisher, cfg.InstanceID)

	// 4. Session, reconciler and services
	resolver := session.NewResolver(store)
	unsubscribe := resolver.Subscribe(func(s session.Session) {
		log.Printf("[Session] Resolved: level=%s", s.AccessLevel())
	})
	defer unsubscribe()

	reconciler := friendreq.NewReconciler(store, invalidator)
	defer reconciler.Close()
	sender := friendreq.NewSender(client, reconciler)

	authService := service.NewAuthService(client, invalidator)
	friendService := service.NewFriendService(store, client, invalidator, reconciler, sender)

	// The shell starts resolving the session as soon as it boots.
	store.Ensure(query.KeyAuthUser)

	// 5. Setup Server
	router := NewRouter(RouterConfig{
		NavigationHandler: handler.NewNavigationHandler(resolver),
		AuthHandler:       handler.NewAuthHandler(authService, resolver),
		FriendHandler:     handler.NewFriendHandler(friendService),
		PageHandler:       handler.NewPageHandler(resolver, friendService),
		Sessions:          resolver,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s (api=%s instance=%s)", cfg.ServerPort, cfg.APIBaseURL, cfg.InstanceID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

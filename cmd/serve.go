package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Gorstka/Yatube/internal/cache"
	"github.com/Gorstka/Yatube/internal/handler"
	"github.com/Gorstka/Yatube/internal/metrics"
	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/pkg/jwt"
	"github.com/Gorstka/Yatube/pkg/middleware"
	"github.com/Gorstka/Yatube/pkg/pubsub"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg
	logger := a.logger

	if err := a.migrate(); err != nil {
		return err
	}

	ctx := a.ctx()

	images, err := a.images(ctx)
	if err != nil {
		return err
	}

	pages, err := a.pageCache()
	if err != nil {
		return fmt.Errorf("init page cache: %w", err)
	}
	defer pages.Close()

	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		return fmt.Errorf("init pubsub: %w", err)
	}
	defer bus.Close()
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("event bus ready")

	tokens, err := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.SessionTTL, cfg.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("init session tokens: %w", err)
	}
	if cfg.Auth.Secret == "" {
		logger.Warn().Msg("SECRET_KEY not set; sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens, middleware.SessionConfig{
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
		LoginURL:   cfg.Auth.LoginURL,
	})

	var m *metrics.Metrics
	var observe func(string, error)
	var onCache func(string)
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observe = m.EventPublished
		onCache = m.CacheEvent
	}
	events := service.NewEventPublisher(bus, observe)

	httpHandler := handler.NewHandler(
		service.NewPostService(a.repos, images, events, cfg.Feed.PageSize),
		service.NewGroupService(a.repos.Groups),
		service.NewFollowService(a.repos.Users, a.repos.Follows, events),
		service.NewUserService(a.repos.Users, images, tokens, cfg.Auth.BcryptCost),
		authMiddleware,
		images,
	)

	gin.SetMode(cfg.Server.Mode)
	opts := handler.RouterOptions{
		Logger:      logger,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		IndexCache: cache.Page(pages, cache.PageOptions{
			Prefix:  cfg.Cache.Prefix,
			TTL:     cfg.Cache.TTL,
			OnEvent: onCache,
		}),
	}
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		opts.MediaRoot = cfg.Storage.Local.BasePath
		opts.MediaURL = cfg.Storage.Local.URLPrefix
	}
	r := handler.NewRouter(httpHandler, opts)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("yatube starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-quit:
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.Info().Msg("yatube stopped")
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

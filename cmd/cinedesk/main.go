package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinedesk/cinedesk/internal/admin"
	"github.com/cinedesk/cinedesk/internal/app"
	"github.com/cinedesk/cinedesk/internal/authz"
	castshandler "github.com/cinedesk/cinedesk/internal/casts"
	castsapi "github.com/cinedesk/cinedesk/internal/clients/casts"
	filmsapi "github.com/cinedesk/cinedesk/internal/clients/films"
	membersapi "github.com/cinedesk/cinedesk/internal/clients/members"
	usersapi "github.com/cinedesk/cinedesk/internal/clients/users"
	"github.com/cinedesk/cinedesk/internal/dashboard"
	"github.com/cinedesk/cinedesk/internal/gateway"
	"github.com/cinedesk/cinedesk/internal/login"
	membershandler "github.com/cinedesk/cinedesk/internal/members"
	"github.com/cinedesk/cinedesk/internal/movies"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
	"github.com/cinedesk/cinedesk/internal/stats"
	"github.com/cinedesk/cinedesk/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := session.NewStore(redisClient, logger, "user", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	policy, ok := authz.ParsePolicy(cfg.RoutePolicy)
	if !ok {
		logger.Error("unknown route policy", slog.String("policy", cfg.RoutePolicy))
		os.Exit(1)
	}

	usersClient := usersapi.NewClient(cfg.UsersAPIURL)
	filmsClient := filmsapi.NewClient(cfg.FilmsAPIURL)
	membersClient := membersapi.NewClient(cfg.MembersAPIURL)
	castsClient := castsapi.NewClient(cfg.CastsAPIURL)

	statsService := stats.NewService(filmsClient, redisClient, logger, cfg.StatsCacheTTL)
	authGateway := gateway.New(usersClient, store, logger)

	renderer := &shared.Renderer{Logger: logger, Engine: templates, CSRF: csrfManager, Policy: policy}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Store:            store,
		CSRF:             csrfManager,
		Policy:           policy,
		LoginHandler:     login.NewHandler(logger, authGateway, renderer),
		DashboardHandler: dashboard.NewHandler(logger, renderer, statsService),
		MoviesHandler:    movies.NewHandler(logger, filmsClient, membersClient, castsClient, statsService, renderer, policy),
		MembersHandler:   membershandler.NewHandler(logger, membersClient, renderer),
		CastsHandler:     castshandler.NewHandler(logger, castsClient, filmsClient, membersClient, renderer, policy),
		AdminHandler:     admin.NewHandler(logger, usersClient, renderer),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

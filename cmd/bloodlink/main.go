package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bloodlink/bloodlink/internal/app"
	"github.com/bloodlink/bloodlink/internal/auth"
	"github.com/bloodlink/bloodlink/internal/donations"
	"github.com/bloodlink/bloodlink/internal/funding"
	"github.com/bloodlink/bloodlink/internal/geo"
	"github.com/bloodlink/bloodlink/internal/guard"
	"github.com/bloodlink/bloodlink/internal/observability"
	"github.com/bloodlink/bloodlink/internal/platform/cache"
	"github.com/bloodlink/bloodlink/internal/platform/db"
	"github.com/bloodlink/bloodlink/internal/stats"
	"github.com/bloodlink/bloodlink/internal/users"
	"github.com/bloodlink/bloodlink/jobs"
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

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	lists := cache.NewListCache(redisClient, cfg.ListCacheTTL)

	tokens := auth.NewTokenManager(cfg.JWTSecret, "bloodlink", cfg.TokenTTL, redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, redisClient, mailClient, logger)
	authenticator := auth.NewAuthenticator(tokens, authService, logger)
	authHandler := auth.NewHandler(logger, authService, authenticator)

	guardMiddleware := guard.Middleware{Resolver: authService, Logger: logger}
	navigationHandler := &guard.Handler{Resolver: authService, Logger: logger}

	metrics := observability.NewMetrics()

	donationsRepo := donations.NewRepository(pool)
	donationsService := donations.NewService(donationsRepo, lists, logger)
	donationsService.SetTransitionObserver(metrics)
	donationsHandler := donations.NewHandler(logger, donationsService, authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, lists, authService, logger)
	usersHandler := users.NewHandler(logger, usersService)

	gateway := funding.NewClient(cfg.PaymentGatewayURL, cfg.PaymentSuccessURL, cfg.PaymentCancelURL)
	if err := gateway.Ping(ctx); err != nil {
		logger.Warn("payment gateway unreachable", slog.Any("error", err))
	}
	fundingRepo := funding.NewRepository(pool)
	fundingService := funding.NewService(fundingRepo, gateway, lists, logger)
	fundingHandler := funding.NewHandler(logger, fundingService)

	geoHandler := geo.NewHandler(logger, geo.NewService(geo.NewRepository(pool)))
	statsHandler := stats.NewHandler(logger, stats.NewService(stats.NewRepository(pool)))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authenticator:     authenticator,
		Guard:             guardMiddleware,
		AuthHandler:       authHandler,
		NavigationHandler: navigationHandler,
		DonationsHandler:  donationsHandler,
		UsersHandler:      usersHandler,
		FundingHandler:    fundingHandler,
		GeoHandler:        geoHandler,
		StatsHandler:      statsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/emirkaya/toolshare-backend/api/routes"
	"github.com/emirkaya/toolshare-backend/internal/activity"
	"github.com/emirkaya/toolshare-backend/internal/auth"
	"github.com/emirkaya/toolshare-backend/internal/ratings"
	"github.com/emirkaya/toolshare-backend/internal/reservations"
	"github.com/emirkaya/toolshare-backend/internal/tools"
	"github.com/emirkaya/toolshare-backend/internal/users"
	"github.com/emirkaya/toolshare-backend/pkg/auth/session"
	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
	"github.com/emirkaya/toolshare-backend/pkg/metrics"
	"github.com/emirkaya/toolshare-backend/pkg/migrate"
	"github.com/emirkaya/toolshare-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	toolsRepo := tools.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	toolsService, err := tools.NewService(tools.ServiceParams{Repo: toolsRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create tools service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(reservations.ServiceParams{
		Repo:      reservations.NewRepository(dbClient.DB()),
		ToolsRepo: toolsRepo,
		Tx:        dbClient,
		Metrics:   bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	ratingsService, err := ratings.NewService(ratings.ServiceParams{
		Repo:      ratings.NewRepository(dbClient.DB()),
		ToolsRepo: toolsRepo,
		Tx:        dbClient,
		Metrics:   bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activity.ServiceParams{
		Repo: activity.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Metrics:         registry,
		Sessions:        sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		UsersRepo:       usersRepo,
		ToolsService:    toolsService,
		Reservations:    reservationsService,
		Ratings:         ratingsService,
		Activity:        activityService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

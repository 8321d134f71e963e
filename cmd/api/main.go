package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/parkinglot-backend/api/controllers"
	"github.com/angelmondragon/parkinglot-backend/api/routes"
	"github.com/angelmondragon/parkinglot-backend/internal/auth"
	"github.com/angelmondragon/parkinglot-backend/internal/capacity"
	"github.com/angelmondragon/parkinglot-backend/internal/lots"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/internal/reservations"
	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	"github.com/angelmondragon/parkinglot-backend/internal/users"
	"github.com/angelmondragon/parkinglot-backend/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/instance"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/metrics"
	"github.com/angelmondragon/parkinglot-backend/pkg/migrate"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
	"github.com/angelmondragon/parkinglot-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
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
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	parkingMetrics := metrics.NewParkingMetrics(registry)

	var emitter outbox.Emitter = outbox.Noop{}
	if cfg.FeatureFlags.Eventing {
		emitter = outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	}

	capacityManager, err := capacity.NewManager(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create capacity manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	lotRepo := lots.NewRepository(dbClient.DB())
	spotRepo := spots.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		AdminConfig:    cfg.Admin,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	lotsService, err := lots.NewService(lots.ServiceParams{
		Repo:     lotRepo,
		Spots:    spotRepo,
		Tx:       dbClient,
		Capacity: capacityManager,
		Outbox:   emitter,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lots service", err)
		os.Exit(1)
	}

	spotsService, err := spots.NewService(spots.ServiceParams{
		Repo:     spotRepo,
		Tx:       dbClient,
		Capacity: capacityManager,
		Outbox:   emitter,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create spots service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(reservations.ServiceParams{
		Repo:     reservations.NewRepository(dbClient.DB()),
		Lots:     lotRepo,
		Spots:    spotRepo,
		Users:    userRepo,
		Tx:       dbClient,
		Capacity: capacityManager,
		Outbox:   emitter,
		Metrics:  parkingMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"eventing": cfg.FeatureFlags.Eventing,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(routes.Dependencies{
		Config: cfg,
		Logger: logg,
		Pingers: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Redis:        redisClient,
		Sessions:     sessionManager,
		Gatherer:     registry,
		Auth:         authService,
		Users:        usersService,
		Lots:         lotsService,
		Spots:        spotsService,
		Reservations: reservationsService,
		Reports:      reportsService,
		Capacity:     capacityManager,
		DLQ:          outbox.NewDLQRepository(dbClient.DB()),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

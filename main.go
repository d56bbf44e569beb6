package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"parking_facility/internal/api"
	"parking_facility/internal/api/handler"
	"parking_facility/internal/api/middleware"
	"parking_facility/internal/config"
	"parking_facility/internal/repository"
	"parking_facility/internal/repository/memory"
	"parking_facility/internal/repository/postgresql"
	"parking_facility/internal/service"
)

func main() {
	cfg := config.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()
	logger.Infow("configuration loaded", "facility", cfg.FacilityName, "port", cfg.ServerPort)

	// The engine is authoritative in memory; the archive database is optional.
	var archiveRepo repository.TicketArchiveRepository
	if cfg.DBHost != "" {
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			logger.Fatalw("could not connect to archive database", "error", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			cancel()
			logger.Fatalw("could not prepare archive schema", "error", err)
		}
		cancel()
		archiveRepo = postgresql.NewPgTicketArchiveRepository(db)
		logger.Infow("ticket archive enabled", "host", cfg.DBHost, "database", cfg.DBName)
	} else {
		logger.Info("no DB_HOST configured, running without ticket archive")
	}

	userRepo := memory.NewUserRepository()
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	if err := authService.Bootstrap(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatalw("could not bootstrap admin account", "error", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := service.NewEngineMetrics(promRegistry)
	httpMetrics := middleware.NewHTTPMetrics(promRegistry)

	wsManager := handler.NewWebSocketManager(logger)
	go wsManager.Start()

	facilityService := service.NewFacilityService(
		service.FacilityConfig{
			Name:              cfg.FacilityName,
			BaseRatePerHour:   cfg.BaseRatePerHour,
			TicketNumberFloor: cfg.TicketNumberFloor,
			ActivateOnIssue:   cfg.ActivateOnIssue,
			Fullness:          service.FullnessPolicy(cfg.FullnessPolicy),
		},
		service.NewSimulatedGateway(),
		archiveRepo,
		wsManager,
		engineMetrics,
		logger,
	)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	router := api.SetupRouter(authService, facilityService, authMiddleware, httpMetrics, promRegistry, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Infow("server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalw("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}

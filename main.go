package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/backend"
	"github.com/notblessy/studio-core/config"
	"github.com/notblessy/studio-core/db"
	"github.com/notblessy/studio-core/handler"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/observability"
	"github.com/notblessy/studio-core/repository"
	"github.com/notblessy/studio-core/utils"
	"github.com/notblessy/studio-core/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("cannot load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize session database
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}

	if err := conn.AutoMigrate(&model.Session{}); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	sessions := repository.NewCachedSessionRepository(
		repository.NewSessionRepository(conn),
		cfg.SessionCacheSize,
		cfg.SessionCacheTTL,
		metrics,
	)

	sealer, err := utils.NewSealer(cfg.SessionSecret)
	if err != nil {
		logrus.Fatalf("Failed to initialize token sealer: %v", err)
	}

	// Cloudinary is optional - avatar uploads are disabled without it
	var avatars utils.AvatarStore
	cloudinaryService, err := utils.NewCloudinaryService(cfg.CloudinaryURL)
	if err != nil {
		logrus.Warnf("Cloudinary not configured: %v. Avatar uploads will not work.", err)
	} else {
		avatars = cloudinaryService
	}

	client := backend.NewClient(cfg.BackendURL, backend.WithTimeout(cfg.BackendTimeout), backend.WithMetrics(metrics))
	logrus.Infof("Using studio backend at %s", cfg.BackendURL)

	sweeper, err := worker.NewSessionSweeper(sessions, cfg.SessionSweepSchedule, metrics)
	if err != nil {
		logrus.Fatalf("Failed to schedule session sweeper: %v", err)
	}

	// Initialize Echo
	e := echo.New()

	// Setup routes
	handler.SetupRoutes(e, handler.Dependencies{
		Sessions:   sessions,
		Backend:    client,
		Sealer:     sealer,
		Avatars:    avatars,
		Metrics:    metrics,
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	})

	wg := &sync.WaitGroup{}

	// Expired session cleanup
	sweeper.Start()
	logrus.Infof("Session sweeper scheduled: %s", cfg.SessionSweepSchedule)

	// HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("HTTP server starting on :%s", cfg.Port)

		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("HTTP server error: %v", err)
		}
	}()

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutdown signal received")

	// Initiate graceful shutdown
	ctxTimeout, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(ctxTimeout); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}
	sweeper.Stop()

	wg.Wait()
	logrus.Info("All services shut down gracefully")
}

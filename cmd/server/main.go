package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/projectdesk/internal/handlers"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/internal/services"
	"github.com/alimgiray/projectdesk/internal/workers"
	"github.com/alimgiray/projectdesk/pkg/config"
	"github.com/alimgiray/projectdesk/pkg/database"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Configure(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Dashboard session store
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	var sessionStore repositories.SessionStateStore
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		sessionStore = repositories.NewRedisSessionRepository(redisClient, sessionTTL)
		logger.Infof("Dashboard sessions stored in Redis at %s", cfg.Redis.Addr)
	} else {
		sessionStore = repositories.NewMemorySessionRepository(sessionTTL)
		logger.Info("Dashboard sessions stored in memory")
	}

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(database.DB)
	projectRepo := repositories.NewProjectRepository(database.DB)
	usedIDRepo := repositories.NewUsedIDRepository(database.DB)
	logEntryRepo := repositories.NewLogEntryRepository(database.DB)
	linkRepo := repositories.NewRepositoryLinkRepository(database.DB)

	issuer := services.NewIDIssuer(usedIDRepo, projectRepo, cfg.Registry.IDPrefix)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, usedIDRepo, logEntryRepo, issuer, cfg.Registry.DefaultDeadlineDays)
	logService := services.NewLogEntryService(logEntryRepo, projectRepo)

	var checker services.LinkChecker
	if cfg.GitHub.VerifyLinks {
		checker = services.NewGitHubService(cfg.GitHub.Token)
	}
	linkService := services.NewRepositoryLinkService(projectService, linkRepo, checker)

	signals := services.NewSignals()
	dashboardService := services.NewDashboardService(sessionStore, projectService, userService, signals)

	// Nightly ledger reconciliation
	scheduler := services.NewSchedulerService(projectRepo, usedIDRepo, cfg.Registry.ReconcileSchedule)
	if err := scheduler.StartScheduler(ctx); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.StopScheduler()

	// Link check workers only run when there is something to verify against
	workerManager := workers.NewWorkerManager(ctx)
	if checker != nil {
		interval := time.Duration(cfg.Workers.LinkCheckIntervalMinutes) * time.Minute
		workerManager.StartLinkCheckers(linkService, interval, 1)
	}
	defer workerManager.StopAll()

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	handlers.RegisterRoutes(router, &handlers.Handlers{
		Project:   handlers.NewProjectHandler(projectService, userService, logService, linkService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Health:    handlers.NewHealthHandler(database.DB),
		NotFound:  handlers.NewNotFoundHandler(),
	})

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	stop()
	logger.Info("Server stopped")
}

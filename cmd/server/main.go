package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_service/internal/cache"
	"auth_service/internal/config"
	"auth_service/internal/events"
	"auth_service/internal/handler"
	"auth_service/internal/logging"
	"auth_service/internal/middleware"
	"auth_service/internal/repository"
	"auth_service/internal/service"
	"auth_service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource, so its deferred closes run on all exit paths
func run() error {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	ctx := context.Background()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, &cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool, logger); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// --- Optional collaborators ---
	profileCache := cache.ProfileCache(cache.Noop{})
	redisClient, err := config.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, profile cache disabled", "error", err)
	case redisClient != nil:
		defer redisClient.Close()
		profileCache = cache.NewRedisProfileCache(redisClient, cfg.Redis.ProfileTTL, logger)
		logger.Info("profile cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ProfileTTL)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, events.DefaultQueue)
		if err != nil {
			logger.Warn("amqp unavailable, auth events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			logger.Info("publishing auth events", "queue", events.DefaultQueue)
		}
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.SecretKey, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	roleRepo := repository.NewRoleRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, roleRepo, jwtUtil, logger, service.Options{
		InitialAdminEmail: cfg.InitialAdminEmail,
		Cache:             profileCache,
		Publisher:         publisher,
	})

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, cfg.Cookie, logger)

	// --- Setup Gin Router ---
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// --- Initialize Middlewares ---
	accessMW := middleware.AccessTokenMiddleware(authService)
	refreshMW := middleware.RefreshTokenMiddleware(authService)
	adminMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	authHandler.RegisterAuthRoutes(router.Group("/"), accessMW, refreshMW, adminMW)

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return serve(srv, quit, logger)
}

// serve runs srv until quit fires or the listener fails, then shuts down
// with a 5s grace period
func serve(srv *http.Server, quit <-chan os.Signal, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen failed: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

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

	"github.com/ratethestore/ratethestore-backend/config"
	"github.com/ratethestore/ratethestore-backend/internal/app/controller"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/db"
	"github.com/ratethestore/ratethestore-backend/internal/metrics"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
	"github.com/ratethestore/ratethestore-backend/internal/router"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Rate The Store server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.SeedAdmin(db.GetDB(), db.AdminSeed{
		Name:       cfg.Auth.AdminName,
		Email:      cfg.Auth.AdminEmail,
		Password:   cfg.Auth.AdminPassword,
		BcryptCost: cfg.Auth.BcryptCost,
	}); err != nil {
		logger.Warn("Failed to seed administrator", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())

	var (
		m        *metrics.Metrics
		observer service.RatingObserver
	)
	if cfg.Metrics.Enabled {
		m = metrics.New(map[string]metrics.CountFunc{
			"users":   userRepo.Count,
			"stores":  storeRepo.Count,
			"ratings": ratingRepo.Count,
		})
		observer = m
	}

	// Services
	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:        cfg.JWT.Secret,
		TokenExpiry:      cfg.JWT.TokenExpiry,
		BcryptCost:       cfg.Auth.BcryptCost,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	})
	userService := service.NewUserService(userRepo, ratingRepo, cfg.Auth.BcryptCost)
	storeService := service.NewStoreService(storeRepo, userRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, observer)
	dashboardService := service.NewDashboardService(userRepo, storeRepo, ratingRepo, storeService)

	// Controllers
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewUserController(userService),
		controller.NewStoreController(storeService, ratingService),
		controller.NewRatingController(ratingService),
		controller.NewDashboardController(dashboardService),
		middleware.NewAuthMiddleware(authService),
		m,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
			"metrics": cfg.Metrics.Enabled,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

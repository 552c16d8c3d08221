package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"billwise/internal/api"
	"billwise/internal/api/handlers"
	"billwise/internal/app"
	"billwise/internal/service"
	"billwise/pkg/auth"
	"billwise/pkg/config"
	"billwise/pkg/logger"
	"billwise/pkg/metrics"

	"go.uber.org/zap"
)

// @title Billwise API
// @version 1.0
// @description Bill analysis service: paste or upload a bill and get a spending breakdown, optionally compared with your previous bill

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting billwise service",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("pdf_engine", cfg.Extraction.PDFEngine),
	)

	// Initialize storage
	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	m := metrics.New()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(storage.Users, jwtManager, appLogger)

	backend, err := service.NewGigaChatBackend(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize generation backend", zap.Error(err))
	}
	defer backend.Close()

	analysisService := app.NewAnalysisService(&cfg.Extraction, storage, backend, m, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, appLogger)

	// Setup router
	router := api.SetupRouter(
		api.RouterConfig{
			BodyLimit:    cfg.Extraction.BodyLimit(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		authHandler,
		analysisHandler,
		jwtManager,
		m,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := router.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := router.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finsight/internal/api"
	"finsight/internal/api/handlers"
	"finsight/internal/models"
	"finsight/internal/repository"
	"finsight/internal/service"
	"finsight/pkg/auth"
	"finsight/pkg/config"
	"finsight/pkg/logger"
	"finsight/pkg/postgres"

	"go.uber.org/zap"
)

// @title FinSight API
// @version 1.0
// @description Personal finance ledger with grounded assistant answers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

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
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinSight service")

	// Apply schema migrations before anything touches the database
	if err := repository.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	chatRepo := repository.NewChatRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	analyticsService := service.NewAnalyticsService(appLogger)
	insightService := service.NewInsightService(models.InsightThresholds{
		OverspendRatio: cfg.Insights.OverspendRatio,
		NearLimitRatio: cfg.Insights.NearLimitRatio,
		TrendThreshold: cfg.Insights.TrendThreshold,
	}, appLogger)
	ledgerService := service.NewLedgerService(ledgerRepo, analyticsService, insightService, appLogger)

	// The chat flow keeps working without a completion backend when the
	// local fallback is enabled.
	var completer service.Completer
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		if !cfg.Assistant.FallbackEnabled {
			appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
		}
		appLogger.Warn("LLM service unavailable, chat will answer locally", zap.Error(err))
		completer = service.UnavailableCompleter{}
	} else {
		defer llmService.Close()
		completer = llmService
	}

	assistantService := service.NewAssistantService(completer, &cfg.Assistant, appLogger)
	contextBuilder := service.NewContextBuilder(&cfg.Assistant, appLogger)
	localAnswerer := service.NewLocalAnswerer(analyticsService, appLogger)
	chatService := service.NewChatService(ledgerService, assistantService, contextBuilder, localAnswerer, chatRepo, &cfg.Assistant, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	txHandler := handlers.NewTransactionHandler(ledgerService, appLogger)
	budgetHandler := handlers.NewBudgetHandler(ledgerService, appLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(ledgerService, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, txHandler, budgetHandler, analyticsHandler, chatHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

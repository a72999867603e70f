package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"apexbox/internal/api"
	"apexbox/internal/api/handlers"
	"apexbox/internal/connector"
	"apexbox/internal/models"
	"apexbox/internal/repository"
	"apexbox/internal/search"
	"apexbox/internal/service"
	"apexbox/pkg/auth"
	"apexbox/pkg/config"
	"apexbox/pkg/logger"
	"apexbox/pkg/postgres"

	"go.uber.org/zap"
)

// @title apexbox API
// @version 1.0
// @description Sim-racing setup aggregator: multi-source ingestion with content-hash dedup, web-search fallback chain and grounded AI answers

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
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting apexbox service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	setupRepo := repository.NewSetupRepository(db, appLogger)
	historyRepo := repository.NewHistoryRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Source connectors: the scrapers from config plus the social API.
	// Adding a source is a config entry and a constructor call; the
	// coordinator never changes.
	connectors := make([]connector.Connector, 0, len(cfg.Scrapers)+1)
	for _, sc := range cfg.Scrapers {
		connectors = append(connectors, connector.NewSiteScraper(
			sc.Name,
			models.Source("scraped-"+sc.Name),
			sc.URLFormat,
			sc.ItemClass,
			appLogger,
		))
	}
	connectors = append(connectors, connector.NewRedditConnector(cfg.Reddit, appLogger))

	// Search fallback chain: Brave first, SerpAPI second, fixed order
	chain := search.NewChain(
		[]search.Provider{
			search.NewBraveProvider(cfg.Search.BraveAPIKey, cfg.Search.BraveBaseURL, cfg.Search.ResultLimit),
			search.NewSerpProvider(cfg.Search.SerpAPIKey, cfg.Search.SerpBaseURL, cfg.Search.ResultLimit),
		},
		cfg.Search.Timeout,
		appLogger,
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	normalizer := service.NewNormalizer(appLogger)
	ingestService := service.NewIngestService(connectors, normalizer, setupRepo, cfg.Ingest.Timeout, appLogger)
	llmService := service.NewLLMService(&cfg.Completion, appLogger)
	chatService := service.NewChatService(chain, setupRepo, historyRepo, llmService, normalizer, cfg.Ingest.RecentLimit, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	ingestHandler := handlers.NewIngestHandler(ingestService, appLogger)
	setupHandler := handlers.NewSetupHandler(setupRepo, appLogger)
	searchHandler := handlers.NewSearchHandler(chain, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, ingestHandler, setupHandler, searchHandler, chatHandler, jwtManager, appLogger)

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

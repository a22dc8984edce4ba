package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/stocktrack/config"
	_ "github.com/epeers/stocktrack/docs"
	"github.com/epeers/stocktrack/internal/alphavantage"
	"github.com/epeers/stocktrack/internal/auth"
	"github.com/epeers/stocktrack/internal/cache"
	"github.com/epeers/stocktrack/internal/database"
	"github.com/epeers/stocktrack/internal/handlers"
	"github.com/epeers/stocktrack/internal/quotes"
	"github.com/epeers/stocktrack/internal/repository"
	"github.com/epeers/stocktrack/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

// @title StockTrack API
// @version 1.0
// @description Stock lookup and portfolio tracking with server-sent view state.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db.Pool)
	userRepo := repository.NewUserRepository(db.Pool)

	// Initialize quote lookup
	if cfg.AVKey == "" {
		log.Warn("AV_KEY is not set; quote lookups will be rejected")
	}
	avClient := alphavantage.NewClient(cfg.AVKey)
	memCache := cache.NewMemoryCache(5 * time.Minute)
	lookup := quotes.NewLookup(avClient, memCache)

	// Initialize services
	provider := auth.NewProvider(userRepo, []byte(cfg.AuthSecret), cfg.SessionTTL)
	registry := services.NewRegistry(ctx, docRepo, lookup, cfg.AppID, quotes.SuggestionDelay)
	defer registry.Close()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(provider, registry)
	viewHandler := handlers.NewViewHandler(registry)
	portfolioHandler := handlers.NewPortfolioHandler(registry)

	// Setup Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router, provider, sessionHandler, viewHandler, portfolioHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Event streams end when the process is signalled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return docRepo.Listen(gctx)
	})

	g.Go(func() error {
		registry.Reap(gctx, services.WorkspaceSweepInterval, services.WorkspaceIdleTTL)
		return nil
	})

	g.Go(func() error {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		// Give outstanding requests 5 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Server exited with error: %v", err)
		return
	}
	log.Info("Server exited")
}

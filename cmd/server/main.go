package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/stocklink/backend/internal/application/catalog"
	syncapp "github.com/stocklink/backend/internal/application/sync"
	"github.com/stocklink/backend/internal/infrastructure/config"
	"github.com/stocklink/backend/internal/infrastructure/logger"
	"github.com/stocklink/backend/internal/infrastructure/ordersdb"
	"github.com/stocklink/backend/internal/infrastructure/persistence"
	"github.com/stocklink/backend/internal/infrastructure/sources"
	"github.com/stocklink/backend/internal/interfaces/http/handler"
	"github.com/stocklink/backend/internal/interfaces/http/middleware"
	"github.com/stocklink/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting StockLink backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Catalog database (local SQLite)
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.CatalogDB, gormLog)
	if err != nil {
		log.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing catalog database", zap.Error(err))
		}
	}()
	log.Info("Catalog database ready", zap.String("path", cfg.CatalogDB.Path))

	// Orders database (external, optional). A missing connection only
	// disables price sync; the rest of the service still runs.
	var ordersClient *ordersdb.Client
	if cfg.OrdersDB.Host != "" {
		ordersClient, err = ordersdb.Open(&cfg.OrdersDB)
		if err != nil {
			log.Warn("Orders database unavailable, price sync disabled", zap.Error(err))
		} else {
			defer func() {
				if err := ordersClient.Close(); err != nil {
					log.Error("Error closing orders database", zap.Error(err))
				}
			}()
			log.Info("Orders database connected", zap.String("host", cfg.OrdersDB.Host))
		}
	} else {
		log.Info("No orders database configured, price sync disabled")
	}

	// Repositories and services
	productRepo := persistence.NewGormProductRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	productService := catalogapp.NewProductService(productRepo)
	settingsService := catalogapp.NewSettingsService(settingsRepo)
	syncService := syncapp.NewService(productRepo, settingsRepo, sources.NewProvider(ordersClient), syncapp.Config{
		BatchSize:      cfg.Sync.BatchSize,
		PriceWorkers:   cfg.Sync.PriceWorkers,
		SourceTimeout:  cfg.Sync.SourceTimeout,
		ProgressBuffer: cfg.Sync.ProgressBuffer,
	}, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	middleware.SetupValidator()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewProductHandler(productService)).
		Register(handler.NewSettingsHandler(settingsService)).
		Register(handler.NewStorefrontHandler()).
		Register(handler.NewSyncHandler(syncService, log)).
		Register(handler.NewSystemHandler(db, version))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

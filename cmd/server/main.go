// cmd/server/main.go
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

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "serial-discovery/docs"
	"serial-discovery/internal/config"
	"serial-discovery/internal/database"
	"serial-discovery/internal/discovery"
	"serial-discovery/internal/discovery/serial"
	"serial-discovery/internal/handler"
	"serial-discovery/internal/repository"
	"serial-discovery/internal/routes"
	"serial-discovery/internal/service"
	"serial-discovery/internal/utils"
)

const historyCleanupInterval = time.Hour

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB
	eventBus *handler.EventBus

	scanRepo         repository.ScanRunRepository
	serialScanner    *serial.Scanner
	discoveryService *service.DiscoveryService

	stopBackground context.CancelFunc
}

// @title Serial Discovery API
// @version 1.0.0
// @description Serial port discovery service backed by udev

// @contact.name Serial Discovery API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8085
// @BasePath /api/v1
func main() {
	configFile := pflag.StringP("config", "c", "", "path to config file")
	pflag.Parse()

	app, err := NewApplication(*configFile)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "serial-discovery")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg.Discovery)

	app := &Application{
		config:   cfg,
		logger:   logger,
		eventBus: handler.NewEventBus(logger),
	}

	if err := app.initializeHistory(); err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	app.initializeServices()
	app.initializeServer()

	return app, nil
}

// initializeHistory connects the history database, or falls back to an
// in-memory history when the database is disabled
func (app *Application) initializeHistory() error {
	if !app.config.Database.Enabled {
		app.scanRepo = repository.NewMemoryScanRunRepository(app.config.Database.HistoryLimit)
		app.logger.Info("Database disabled, keeping scan history in memory",
			zap.Int("capacity", app.config.Database.HistoryLimit),
		)
		return nil
	}

	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	migrator := database.NewMigrator(db, app.logger)
	if app.config.Database.RunMigrations {
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	status, err := migrator.Status()
	if err != nil {
		return err
	}
	if status.Dirty || status.Pending() {
		app.logger.Warn("History schema is not current",
			zap.Uint("version", status.Version),
			zap.Uint("latest", status.Latest),
			zap.Bool("dirty", status.Dirty),
		)
	}

	app.scanRepo = repository.NewScanRunRepository(db, app.logger)
	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeServices creates scanners and the discovery service
func (app *Application) initializeServices() {
	app.serialScanner = serial.NewScanner(app.logger, &serial.Config{
		UdevadmPath:  app.config.Discovery.UdevadmPath,
		UdevadmArgs:  app.config.Discovery.UdevadmArgs,
		ByPathDir:    app.config.Discovery.ByPathDir,
		ScanTimeout:  app.config.Discovery.ScanTimeout,
		PortPatterns: app.config.Discovery.PortPatterns,
	})

	scannerManager := discovery.NewScannerManager(app.logger)
	scannerManager.RegisterScanner(app.serialScanner)

	app.discoveryService = service.NewDiscoveryService(
		scannerManager,
		app.serialScanner,
		app.scanRepo,
		app.eventBus,
		app.config,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	var dbChecker handler.DatabaseChecker
	if app.database != nil {
		dbChecker = app.database
	}

	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		dbChecker,
		app.eventBus,
		app.discoveryService,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      routerManager.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// startBackgroundServices starts the event bus and history cleanup
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.stopBackground = cancel

	go app.eventBus.Start()
	go app.startCleanupService(ctx)

	app.logger.Info("Background services started")
}

// startCleanupService prunes scan history past its retention
func (app *Application) startCleanupService(ctx context.Context) {
	ticker := time.NewTicker(historyCleanupInterval)
	defer ticker.Stop()

	app.logger.Info("Cleanup service started",
		zap.Duration("retention", app.config.Database.HistoryRetention),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			deleted, err := app.discoveryService.PruneHistory(cleanupCtx)
			cancel()

			if err != nil {
				app.logger.Error("Failed to cleanup scan history", zap.Error(err))
			} else if deleted > 0 {
				app.logger.Info("Cleaned up scan history", zap.Int64("deleted", deleted))
			}
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "serial-discovery")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.stopBackground != nil {
		app.stopBackground()
	}
	app.eventBus.Close()

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()
	app.waitForShutdown()

	return nil
}

// internal/app.go
package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	router "coinquest/internal/api"
	"coinquest/internal/api/handler"
	"coinquest/internal/config"
	"coinquest/internal/content"
	"coinquest/internal/jobs"
	"coinquest/internal/repository"
	"coinquest/internal/repository/memory"
	"coinquest/internal/repository/postgres"
	"coinquest/internal/service"
	"coinquest/internal/util"
	"coinquest/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *logrus.Logger
	DB     *sqlx.DB // Nil with the memory storage driver

	// Storage
	Transactor   db.Transactor
	DBExecutor   repository.DBExecutor
	Repositories repository.Repositories
	Catalog      *content.Catalog

	// Services
	WalletService      service.WalletService
	TradingService     service.TradingService
	AchievementService service.AchievementService
	LearningService    service.LearningService
	LeaderboardService service.LeaderboardService
	AuthService        service.AuthService
	PriceSimulator     *service.PriceSimulator

	Scheduler *jobs.Scheduler

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads the configuration from the environment and initializes all components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.InitializeWithConfig(ctx, cfg)
}

// InitializeWithConfig initializes all application components from cfg.
func (app *Application) InitializeWithConfig(ctx context.Context, cfg *config.AppConfig) error {
	app.Config = cfg

	// 2. Initialize Logger
	logFormat := "text"
	if cfg.IsProduction() {
		logFormat = "json"
	}
	app.Logger = util.InitLogger(cfg.LogLevel, logFormat)
	app.Logger.WithField("env", cfg.AppEnv).Info("Application configuration loaded successfully.")

	// 3. Storage
	if err := app.initStorage(ctx); err != nil {
		return err
	}

	// 4. Content catalog
	catalog, err := content.Load(cfg.ContentCatalogPath) // Empty path selects the embedded catalog
	if err != nil {
		return fmt.Errorf("failed to load content catalog: %w", err)
	}
	app.Catalog = catalog
	app.Logger.WithField("modules", app.Catalog.ModuleCount()).Info("Content catalog loaded.")

	// 5. Initialize Services
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	app.AchievementService = service.NewAchievementService(app.Transactor, app.Repositories)
	app.WalletService = service.NewWalletService(app.Transactor, app.DBExecutor, app.Repositories.Wallets, app.Repositories.Transactions)
	app.TradingService = service.NewTradingService(app.Transactor, app.DBExecutor, app.Repositories, app.AchievementService, app.Logger)
	app.LearningService = service.NewLearningService(app.Transactor, app.Catalog, app.Repositories, app.AchievementService, app.Logger)
	app.LeaderboardService = service.NewLeaderboardService(app.DBExecutor, app.Repositories)
	app.AuthService = service.NewAuthService(app.Transactor, app.DBExecutor, app.Repositories, tokens, app.AchievementService, app.Logger)
	app.PriceSimulator = service.NewPriceSimulator(app.Transactor, app.Repositories.Stocks, rand.Float64, app.Logger)
	app.Logger.Info("Services initialized.")

	if cfg.SeedStocks {
		inserted, err := app.TradingService.SeedStocks(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed stocks: %w", err)
		}
		app.Logger.WithField("inserted", inserted).Info("Default stocks seeded.")
	}

	// 6. Background jobs
	app.Scheduler = jobs.NewScheduler(app.PriceSimulator, app.Logger)
	if err := app.Scheduler.Start(context.Background(), cfg.PriceTickSchedule); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// 7. Initialize HTTP Handlers and Router
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(app.AuthService, app.Logger),
		Wallet:       handler.NewWalletHandler(app.WalletService, app.Logger),
		Stocks:       handler.NewStockHandler(app.TradingService, app.PriceSimulator, app.Logger),
		Achievements: handler.NewAchievementHandler(app.AchievementService, app.Logger),
		Learning:     handler.NewLearningHandler(app.LearningService, app.Logger),
		Leaderboard:  handler.NewLeaderboardHandler(app.LeaderboardService, app.Logger),
	}
	app.HTTPHandler = router.NewRouter(handlers, app.AuthService, router.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) initStorage(ctx context.Context) error {
	switch app.Config.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		app.Transactor = store.Transactor()
		app.DBExecutor = store.Executor()
		app.Repositories = store.Repositories()
		app.Logger.Warn("Using in-memory storage, data is lost on restart.")
		return nil
	case config.StorageDriverPostgres:
		database, err := db.NewPostgresDB(app.Config.DB())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		app.Logger.Info("Database connection established.")

		if app.Config.ApplySchema {
			if err := db.ApplySchema(ctx, database); err != nil {
				return err
			}
			app.Logger.Info("Database schema applied.")
		}

		app.Transactor = db.NewTransactor(db.SQLXBeginner{DB: database})
		app.DBExecutor = database
		app.Repositories = postgres.NewRepositories()
		app.Logger.Info("Repositories initialized.")
		return nil
	default:
		return fmt.Errorf("unsupported storage driver %q", app.Config.StorageDriver)
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.WithError(err).Error("Failed to close database connection")
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}

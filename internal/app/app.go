package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/internal/database"
	"github.com/temcen/myndreader/internal/handlers"
	"github.com/temcen/myndreader/internal/middleware"
	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/internal/validation"
)

const metricsInterval = 30 * time.Second

type App struct {
	config    *config.Config
	logger    *logrus.Logger
	db        *database.Database
	services  *services.Services
	handlers  *handlers.Handlers
	validator *validation.SchemaValidator
	cache     *middleware.ResponseCache
	router    *gin.Engine

	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+30*time.Second)
		defer cancel()
		if err := svcs.Store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		app.logger.Info("Database schema is up to date")
	}

	validator, err := validation.NewDefaultSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}
	app.validator = validator

	app.handlers = handlers.New(app.logger, svcs)
	app.cache = middleware.NewResponseCache(db.Redis, cfg.Cache, app.logger)
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Start launches the background workers: runtime metrics sampling and,
// when Kafka is enabled, the reading event consumer.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.config.Monitoring.Enabled {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			a.services.Health.CollectMetrics(ctx, metricsInterval)
		}()
	}

	if a.services.EventBus != nil {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			a.logger.WithField("topic", a.services.EventBus.Topic()).Info("Starting reading event consumer")
			err := a.services.EventBus.ConsumeReadingEvents(ctx, a.services.ReadingEvents.Handle)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.WithError(err).Error("Reading event consumer stopped")
			}
		}()
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Background workers did not stop in time")
	}

	if a.services.EventBus != nil {
		if err := a.services.EventBus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing event bus")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	vm := middleware.NewValidationMiddleware(a.validator)

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	if a.config.Monitoring.Enabled {
		metricsPath := a.config.Monitoring.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		router.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	router.POST("/auth/token", vm.ValidateHeaders(), a.handlers.Auth.Token)

	api := router.Group("/api/v1")
	if a.config.Auth.Enabled {
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
	}
	api.Use(vm.ValidateHeaders(), vm.ValidateParams())

	catalog := api.Group("", a.cache.Middleware())
	{
		catalog.GET("/books", a.handlers.Book.List)
		catalog.GET("/books/:bookId", a.handlers.Book.Get)
		catalog.POST("/books", vm.ValidateBody(validation.BookSchema), a.handlers.Book.Create)
		catalog.GET("/authors", a.handlers.Book.ListAuthors)
		catalog.POST("/authors", a.handlers.Book.CreateAuthor)
		catalog.GET("/genres", a.handlers.Book.ListGenres)
		catalog.POST("/genres", a.handlers.Book.CreateGenre)
	}

	users := api.Group("/users")
	{
		users.POST("", vm.ValidateBody(validation.UserSchema), a.handlers.User.Create)
		users.GET("/:userId", a.handlers.User.Get)
		users.GET("/:userId/readings", a.handlers.User.ListReadings)
		users.POST("/:userId/readings", vm.ValidateBody(validation.ReadingSchema), a.handlers.User.AddReading)
		users.PUT("/:userId/readings/:readingId", a.handlers.User.UpdateReading)
		users.GET("/:userId/preferences", a.handlers.User.GetPreferences)
		users.POST("/:userId/preferences", vm.ValidateBody(validation.PreferencesSchema), a.handlers.User.SavePreferences)
	}

	recommendations := api.Group("/recommendations")
	{
		recommendations.POST("/:userId", vm.ValidateBody(validation.RecommendationRequestSchema), a.handlers.Recommendation.Recommend)
		recommendations.GET("/:userId/detailed", a.handlers.Recommendation.Detailed)
		recommendations.GET("/:userId/comfort-levels", a.handlers.Recommendation.CompareComfortLevels)
		recommendations.GET("/:userId/similar/:bookId", a.handlers.Recommendation.Similar)
	}

	a.router = router
}

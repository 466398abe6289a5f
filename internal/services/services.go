package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/internal/database"
	"github.com/temcen/myndreader/internal/messaging"
	"github.com/temcen/myndreader/internal/recommender"
	"github.com/temcen/myndreader/internal/store"
)

type Services struct {
	Auth            *AuthService
	Health          *HealthService
	RateLimit       *RateLimitService
	Catalog         *CatalogService
	Users           *UserService
	Recommendations *RecommendationService
	ReadingEvents   *ReadingEventProcessor
	EventBus        *messaging.EventBus
	Store           *store.PostgresStore
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	pgStore := store.NewPostgresStore(db.PG, logger)
	preferenceCache := store.NewPreferenceCache(db.Redis, cfg.Recommendation.PreferencesTTL, logger)
	metrics := NewRecommendationMetrics(prometheus.DefaultRegisterer, logger)

	var eventBus *messaging.EventBus
	var publisher EventPublisher
	if cfg.Kafka.Enabled {
		eventBus = messaging.NewEventBus(cfg, logger)
		publisher = eventBus
	}

	engine := recommender.New(
		pgStore, pgStore,
		recommender.NewSeededScorer(cfg.Recommendation.Seed),
	).WithColdStart(cfg.Recommendation.ColdStart.MinRating, cfg.Recommendation.ColdStart.MinRatingsCount)

	health := NewHealthService(logger, prometheus.DefaultRegisterer).
		WithPostgres(db.PG).
		WithRedis(db.Redis)
	if eventBus != nil {
		// Reading events are best effort, so Kafka only degrades the service.
		health.AddCheck("kafka", eventBus.Ping, false)
	}

	return &Services{
		Auth:            NewAuthService(cfg, logger, db.Redis),
		Health:          health,
		RateLimit:       NewRateLimitService(cfg, logger, db.Redis),
		Catalog:         NewCatalogService(pgStore, logger),
		Users:           NewUserService(pgStore, publisher, preferenceCache, logger),
		Recommendations: NewRecommendationService(pgStore, engine, preferenceCache, metrics, &cfg.Recommendation, logger),
		ReadingEvents:   NewReadingEventProcessor(preferenceCache, metrics, logger),
		EventBus:        eventBus,
		Store:           pgStore,
	}, nil
}

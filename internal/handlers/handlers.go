package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Book           *BookHandler
	User           *UserHandler
	Recommendation *RecommendationHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(services.Auth, logger),
		Book:           NewBookHandler(services.Catalog, logger),
		User:           NewUserHandler(services.Users, logger),
		Recommendation: NewRecommendationHandler(services.Recommendations, logger),
	}
}

package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/services"
	"github.com/arlenwu/teamforge/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Behavior       *BehaviorHandler
	Recommendation *RecommendationHandler
	Competition    *CompetitionHandler
	Team           *TeamHandler
}

func New(logger *logrus.Logger, services *services.Services, validator *validation.SchemaValidator) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(services.Auth, validator, logger),
		Behavior:       NewBehaviorHandler(services.MessageBus, validator, logger),
		Recommendation: NewRecommendationHandler(services.Recommendation, logger),
		Competition:    NewCompetitionHandler(services.Competition, logger),
		Team:           NewTeamHandler(services.Recommendation, logger),
	}
}

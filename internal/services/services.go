package services

import (
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
	"github.com/arlenwu/teamforge/internal/database"
	"github.com/arlenwu/teamforge/internal/messaging"
	"github.com/arlenwu/teamforge/internal/repository"
)

type Services struct {
	Auth           *AuthService
	Health         *HealthService
	RateLimit      *RateLimitService
	MessageBus     *messaging.MessageBus
	Recommendation *RecommendationService
	Competition    *CompetitionService
	Repository     *repository.Repository
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	repo := repository.New(db.PG, logger)

	authService := NewAuthService(cfg, logger, db.Redis, repo)
	healthService := NewHealthService(cfg, logger, db)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis)

	messageBus, err := messaging.NewMessageBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := NewRecommendationMetrics()
	recommendationService := NewRecommendationService(repo, &cfg.Recommendation, logger, metrics)
	competitionService := NewCompetitionService(repo, recommendationService, &cfg.Recommendation, logger)

	return &Services{
		Auth:           authService,
		Health:         healthService,
		RateLimit:      rateLimitService,
		MessageBus:     messageBus,
		Recommendation: recommendationService,
		Competition:    competitionService,
		Repository:     repo,
	}, nil
}

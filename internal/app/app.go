package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
	"github.com/arlenwu/teamforge/internal/database"
	"github.com/arlenwu/teamforge/internal/handlers"
	"github.com/arlenwu/teamforge/internal/messaging"
	"github.com/arlenwu/teamforge/internal/middleware"
	"github.com/arlenwu/teamforge/internal/services"
	"github.com/arlenwu/teamforge/internal/validation"
	"github.com/arlenwu/teamforge/pkg/models"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine

	consumerCancel context.CancelFunc
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

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	app.handlers = handlers.New(app.logger, svcs, validator)

	app.setupRouter()
	app.startBehaviorConsumer(validator)

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// startBehaviorConsumer drains queued behavior events into Postgres.
func (a *App) startBehaviorConsumer(validator *validation.SchemaValidator) {
	ctx, cancel := context.WithCancel(context.Background())
	a.consumerCancel = cancel

	handle := behaviorEventHandler(ctx, validator, a.services.Repository, a.logger)
	go func() {
		err := a.services.MessageBus.ConsumeMessages(ctx, handle)
		if err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Behavior event consumer stopped")
		}
	}()
}

type behaviorEventWriter interface {
	InsertBehaviorEvent(ctx context.Context, event *models.BehaviorEventRequest) error
}

// behaviorEventHandler re-validates queued events against the schema before
// persisting. Invalid payloads are dropped rather than retried; a malformed
// event never becomes valid on a later attempt.
func behaviorEventHandler(ctx context.Context, validator *validation.SchemaValidator, store behaviorEventWriter, logger *logrus.Logger) func(messaging.BehaviorMessage) error {
	return func(msg messaging.BehaviorMessage) error {
		if result := validator.ValidateBehaviorEvent(msg.Event); !result.Valid {
			logger.WithFields(logrus.Fields{
				"event_id": msg.EventID,
				"errors":   result.Errors,
			}).Warn("Dropping behavior event that failed validation")
			return nil
		}
		return store.InsertBehaviorEvent(ctx, &msg.Event)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.consumerCancel != nil {
		a.consumerCancel()
	}

	if err := a.services.MessageBus.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing message bus")
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

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health and metrics endpoints (no auth required)
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/ready", a.handlers.Health.Ready)
	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		// Token issuance is the only unauthenticated API route
		api.POST("/auth/token", a.handlers.Auth.Login)

		// Listing is public; personalization kicks in when a token is sent
		listing := api.Group("")
		listing.Use(middleware.OptionalAuth(a.services.Auth, a.logger))
		listing.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
		{
			listing.GET("/competitions", a.handlers.Competition.List)
			listing.GET("/competitions/:id/teams/recommend", a.handlers.Competition.RecommendTeams)
		}

		authed := api.Group("")
		authed.Use(middleware.Auth(a.services.Auth, a.logger))
		authed.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
		{
			authed.POST("/auth/logout", a.handlers.Auth.Logout)
			authed.POST("/behaviors", a.handlers.Behavior.Record)

			recommendations := authed.Group("/recommendations")
			{
				recommendations.GET("/competitions", a.handlers.Recommendation.Competitions)
				recommendations.GET("/teams", a.handlers.Recommendation.Teams)
			}

			authed.GET("/teams/:id/members/recommend", a.handlers.Team.RecommendMembers)
		}
	}

	a.router = router
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/middleware"
	"github.com/arlenwu/teamforge/internal/services"
	"github.com/arlenwu/teamforge/pkg/models"
)

type RecommendationHandler struct {
	recommender services.RecommendationServiceInterface
	logger      *logrus.Logger
}

func NewRecommendationHandler(recommender services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// Competitions serves the caller's personalized competition feed.
func (h *RecommendationHandler) Competitions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit := parseLimit(c)

	recs, err := h.recommender.RecommendCompetitions(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load competition candidates")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse[models.Competition]{
		UserID:          userID,
		Recommendations: recs,
		FallbackReason:  h.recommender.FallbackReason(c.Request.Context(), userID),
	})
}

// Teams serves the caller's personalized recruiting-team feed.
func (h *RecommendationHandler) Teams(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit := parseLimit(c)

	recs, err := h.recommender.RecommendTeams(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load team candidates")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse[models.Team]{
		UserID:          userID,
		Recommendations: recs,
		FallbackReason:  h.recommender.FallbackReason(c.Request.Context(), userID),
	})
}

func parseLimit(c *gin.Context) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

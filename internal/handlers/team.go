package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/repository"
	"github.com/arlenwu/teamforge/internal/services"
	"github.com/arlenwu/teamforge/pkg/models"
)

type TeamHandler struct {
	recommender services.RecommendationServiceInterface
	logger      *logrus.Logger
}

func NewTeamHandler(recommender services.RecommendationServiceInterface, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// RecommendMembers suggests candidate members whose skills fill the team's
// gaps. Leader-facing.
func (h *TeamHandler) RecommendMembers(c *gin.Context) {
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_TEAM_ID",
				"message": "Team ID must be a number",
			},
		})
		return
	}

	recs, err := h.recommender.RecommendTeamMembers(c.Request.Context(), teamID, parseLimit(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "TEAM_NOT_FOUND",
					"message": "Team not found",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to recommend members")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_FAILED",
				"message": "Failed to recommend members",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse[models.User]{
		Recommendations: recs,
	})
}

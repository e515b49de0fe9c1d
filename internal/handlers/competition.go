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

type CompetitionHandler struct {
	competitions *services.CompetitionService
	logger       *logrus.Logger
}

func NewCompetitionHandler(competitions *services.CompetitionService, logger *logrus.Logger) *CompetitionHandler {
	return &CompetitionHandler{
		competitions: competitions,
		logger:       logger,
	}
}

// List serves the paginated competition listing. With recommend=true and an
// authenticated caller, their best matches lead the sequence.
func (h *CompetitionHandler) List(c *gin.Context) {
	query := services.CompetitionListQuery{
		Status:    models.CompetitionStatus(c.Query("status")),
		Keyword:   c.Query("keyword"),
		Page:      parseIntQuery(c, "page"),
		Size:      parseIntQuery(c, "size"),
		Recommend: c.Query("recommend") == "true",
		TopK:      parseIntQuery(c, "topK"),
		UserID:    middleware.GetUserID(c),
	}

	page, err := h.competitions.ListCompetitions(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list competitions")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "LISTING_FAILED",
				"message": "Failed to list competitions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// RecommendTeams ranks one competition's recruiting teams for the caller.
func (h *CompetitionHandler) RecommendTeams(c *gin.Context) {
	competitionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_COMPETITION_ID",
				"message": "Competition ID must be a number",
			},
		})
		return
	}

	userID := middleware.GetUserID(c)
	items, err := h.competitions.RecommendTeamsForCompetition(c.Request.Context(), userID, competitionID, parseLimit(c))
	if err != nil {
		h.logger.WithError(err).WithField("competition_id", competitionID).Error("Failed to recommend teams")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_FAILED",
				"message": "Failed to recommend teams",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"competition_id": competitionID,
		"items":          items,
	})
}

func parseIntQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/messaging"
	"github.com/arlenwu/teamforge/internal/middleware"
	"github.com/arlenwu/teamforge/internal/validation"
	"github.com/arlenwu/teamforge/pkg/models"
)

type BehaviorHandler struct {
	bus       *messaging.MessageBus
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewBehaviorHandler(bus *messaging.MessageBus, validator *validation.SchemaValidator, logger *logrus.Logger) *BehaviorHandler {
	return &BehaviorHandler{
		bus:       bus,
		validator: validator,
		logger:    logger,
	}
}

// Record accepts a behavior event and queues it for persistence. The event
// always belongs to the authenticated caller regardless of the payload's
// user_id.
func (h *BehaviorHandler) Record(c *gin.Context) {
	var req models.BehaviorEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": err.Error(),
			},
		})
		return
	}
	req.UserID = middleware.GetUserID(c)

	if result := h.validator.ValidateBehaviorEvent(req); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	eventID, err := h.bus.PublishBehaviorEvent(req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to queue behavior event")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "EVENT_QUEUE_UNAVAILABLE",
				"message": "Behavior event could not be queued",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"event_id": eventID,
		"status":   "queued",
	})
}

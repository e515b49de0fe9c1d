package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/middleware"
	"github.com/arlenwu/teamforge/internal/services"
	"github.com/arlenwu/teamforge/internal/validation"
	"github.com/arlenwu/teamforge/pkg/models"
)

type AuthHandler struct {
	auth      *services.AuthService
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, validator *validation.SchemaValidator, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator,
		logger:    logger,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Request body must contain username and password",
			},
		})
		return
	}

	if result := h.validator.ValidateAuthRequest(req); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	response, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.WithField("username", req.Username).Warn("Login failed")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid username or password",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "MISSING_AUTHORIZATION",
				"message": "Authentication required",
			},
		})
		return
	}

	if err := h.auth.RevokeToken(userID); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to revoke session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "LOGOUT_FAILED",
				"message": "Failed to revoke session",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

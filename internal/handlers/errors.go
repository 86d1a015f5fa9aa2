package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/internal/services"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status
func respondError(c *gin.Context, err error) {
	var duplicate *models.DuplicateIDError
	var validation *models.ValidationError

	switch {
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{
			"error":                 err.Error(),
			"id":                    duplicate.ID,
			"confirmation_required": true,
		})
	case errors.Is(err, models.ErrProjectIDInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrIncompleteDraft), errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrProjectNotFound),
		errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, services.ErrRepositoryLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNoProjectSelected),
		errors.Is(err, models.ErrUnknownModal),
		errors.Is(err, models.ErrInvalidRepositoryKind),
		errors.Is(err, services.ErrNothingToSubmit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

package handler

import (
	"errors"
	"net/http"

	"crewpay/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the settlement error taxonomy onto HTTP statuses with
// enough detail for an admin to act on.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrOnboardingIncomplete),
		errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsProcessorError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var missing *services.MissingFieldsError
	var upstream *services.CSGAPIError

	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"product": missing.Product,
			"missing": missing.Fields,
		})
	case errors.Is(err, services.ErrInvalidView):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, services.ErrEmailNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email delivery is not configured"})
	case errors.As(err, &upstream), errors.Is(err, services.ErrCSGNotConfigured):
		utils.SafeError("[API] upstream failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Quoting service unavailable"})
	default:
		utils.SafeError("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

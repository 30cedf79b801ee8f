package handlers

import (
	"net/http"

	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Quotes *services.QuoteService
}

func NewAdminHandler(quotes *services.QuoteService) *AdminHandler {
	return &AdminHandler{Quotes: quotes}
}

// PurgeQuoteCache drops every cached quote batch.
func (h *AdminHandler) PurgeQuoteCache(c *gin.Context) {
	if err := h.Quotes.PurgeCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.SafeInfo("[Admin] quote cache purged by %s", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Quote cache purged"})
}

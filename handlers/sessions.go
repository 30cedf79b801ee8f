package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/LovationAdmin/quote-api/middleware"
	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

// sessionTokenLifetime outlives the sliding session expiry; a token for an
// expired session is rejected by the session lookup.
const sessionTokenLifetime = 30 * 24 * time.Hour

type SessionHandler struct {
	Sessions  *services.VisitorService
	Quotes    *services.QuoteService
	Email     *services.EmailService
	JWTSecret string
}

func NewSessionHandler(sessions *services.VisitorService, quotes *services.QuoteService, email *services.EmailService, jwtSecret string) *SessionHandler {
	return &SessionHandler{Sessions: sessions, Quotes: quotes, Email: email, JWTSecret: jwtSecret}
}

// CreateSession opens a visitor session and returns its bearer token.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.Sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateSessionToken(h.JWTSecret, session.ID, session.CreatedAt.Add(sessionTokenLifetime))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, models.CreateSessionResponse{Session: *session, Token: token})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Sessions.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) UpdateSession(c *gin.Context) {
	var req models.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, product := range req.Categories {
		if !product.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + string(product)})
			return
		}
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*req.Email)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
	}

	session, err := h.Sessions.Update(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"requiredFields": services.RequiredFields(session.State.Categories),
	})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EmailQuotes sends the visitor the cheapest quotes of their last search.
func (h *SessionHandler) EmailQuotes(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.Sessions.Get(ctx, middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if session.State.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No email address on this session"})
		return
	}
	if len(session.State.LastSearch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No search to send"})
		return
	}

	results, err := h.Quotes.GetQuotesForProducts(ctx, session.State.LastSearch)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Email.SendQuoteSummary(ctx, session.State.Email, results); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quotes sent"})
}

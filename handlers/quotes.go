package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/LovationAdmin/quote-api/middleware"
	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	Quotes   *services.QuoteService
	Sessions *services.VisitorService
	WS       *WSHandler
}

func NewQuoteHandler(quotes *services.QuoteService, sessions *services.VisitorService, ws *WSHandler) *QuoteHandler {
	return &QuoteHandler{Quotes: quotes, Sessions: sessions, WS: ws}
}

// GetProductQuotes quotes one product line from the posted form.
// Query: sort=premium, group=plan|company, field, min, max.
func (h *QuoteHandler) GetProductQuotes(c *gin.Context) {
	product := models.ProductLine(c.Param("product"))

	var form models.FormInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := parseQuoteView(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := services.BuildSearchParams(product, form)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Quotes.GetQuotes(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := services.ApplyView(result, view); err != nil {
		respondError(c, err)
		return
	}

	h.afterSearch(c, []models.SearchParams{params}, []models.QuoteResult{*result})
	c.JSON(http.StatusOK, result)
}

// GetQuotes quotes every selected category with one form. Missing fields
// are reported for all categories at once.
func (h *QuoteHandler) GetQuotes(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	searches := make([]models.SearchParams, 0, len(req.Categories))
	missing := map[models.ProductLine][]models.FormField{}
	for _, product := range req.Categories {
		if !product.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + string(product)})
			return
		}
		params, err := services.BuildSearchParams(product, req.Form)
		if err != nil {
			var mf *services.MissingFieldsError
			if errors.As(err, &mf) {
				missing[product] = mf.Fields
				continue
			}
			respondError(c, err)
			return
		}
		searches = append(searches, params)
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "missing": missing})
		return
	}

	results, err := h.Quotes.GetQuotesForProducts(c.Request.Context(), searches)
	if err != nil {
		respondError(c, err)
		return
	}

	h.afterSearch(c, searches, results)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// afterSearch stores the search on the visitor session and notifies its
// open sockets.
func (h *QuoteHandler) afterSearch(c *gin.Context, searches []models.SearchParams, results []models.QuoteResult) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		return
	}

	if h.Sessions != nil {
		if _, err := h.Sessions.RecordSearch(c.Request.Context(), sessionID, searches); err != nil {
			utils.SafeWarn("[Quotes] ⚠️  Failed to record search: %v", err)
		}
	}

	if h.WS != nil {
		event := QuoteEvent{Type: "quotes_ready"}
		for _, r := range results {
			event.Products = append(event.Products, string(r.Product))
			event.Count += len(r.Quotes)
		}
		h.WS.Broadcast(sessionID, event)
	}
}

func parseQuoteView(c *gin.Context) (services.QuoteView, error) {
	view := services.QuoteView{
		Sort:  c.Query("sort"),
		Group: c.Query("group"),
		Field: services.QuoteField(c.Query("field")),
	}
	for name, dst := range map[string]**float64{"min": &view.Min, "max": &view.Max} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return view, err
		}
		*dst = &v
	}
	return view, view.Validate()
}

package routes

import (
	"github.com/LovationAdmin/quote-api/handlers"
	"github.com/LovationAdmin/quote-api/middleware"
	"github.com/LovationAdmin/quote-api/services"

	"github.com/gin-gonic/gin"
)

// Deps groups what the route setup needs.
type Deps struct {
	Quotes   *services.QuoteService
	Sessions *services.VisitorService
	Email    *services.EmailService
	WS       *handlers.WSHandler

	JWTSecret       string
	AdminTokenHash  string
	AdminTOTPSecret string
}

// SetupCatalogRoutes sets up the public lookup routes.
func SetupCatalogRoutes(rg *gin.RouterGroup) {
	rg.GET("/forms/required-fields", handlers.GetRequiredFields)
	rg.GET("/ratings/:grade", handlers.GetRating)
	rg.POST("/benefits/classify", handlers.ClassifyBenefits)
}

// SetupSessionRoutes sets up visitor session routes. Creation is public,
// everything else needs the session token.
func SetupSessionRoutes(rg *gin.RouterGroup, d Deps) {
	h := handlers.NewSessionHandler(d.Sessions, d.Quotes, d.Email, d.JWTSecret)

	rg.POST("/sessions", h.CreateSession)

	me := rg.Group("/sessions/me")
	me.Use(middleware.SessionAuth(d.JWTSecret))
	{
		me.GET("", h.GetSession)
		me.PUT("", h.UpdateSession)
		me.DELETE("", h.DeleteSession)
		me.POST("/email", h.EmailQuotes)
	}

	rg.GET("/ws/sessions/:id", middleware.SessionAuth(d.JWTSecret), d.WS.HandleWS)
}

// SetupQuoteRoutes sets up the quoting routes.
func SetupQuoteRoutes(rg *gin.RouterGroup, d Deps) {
	h := handlers.NewQuoteHandler(d.Quotes, d.Sessions, d.WS)

	quotes := rg.Group("/quotes")
	quotes.Use(middleware.SessionAuth(d.JWTSecret))
	{
		quotes.POST("", h.GetQuotes)
		quotes.POST("/:product", h.GetProductQuotes)
	}
}

// SetupAdminRoutes sets up operator routes.
func SetupAdminRoutes(rg *gin.RouterGroup, d Deps) {
	h := handlers.NewAdminHandler(d.Quotes)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminAuth(d.AdminTokenHash, d.AdminTOTPSecret))
	{
		admin.DELETE("/cache", h.PurgeQuoteCache)
	}
}

// Setup registers every route on router.
func Setup(router *gin.Engine, d Deps) {
	v1 := router.Group("/api/v1")
	SetupCatalogRoutes(v1)
	SetupSessionRoutes(v1, d)
	SetupQuoteRoutes(v1, d)
	SetupAdminRoutes(v1, d)
}

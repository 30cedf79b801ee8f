package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LovationAdmin/quote-api/config"
	"github.com/LovationAdmin/quote-api/handlers"
	"github.com/LovationAdmin/quote-api/middleware"
	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/routes"
	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	utils.InitLogger(cfg.LogLevel, cfg.IsProduction())
	defer utils.SyncLogger()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sealer, err := utils.NewSealer(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatal("Failed to init encryption:", err)
	}

	var quoteCache services.QuoteCache
	var sessionStore services.SessionStore
	if cfg.DatabaseURL != "" {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		utils.SafeInfo("✅ Database connected successfully")

		if err := config.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		quoteCache = services.NewPostgresQuoteCache(db)
		sessionStore = services.NewPostgresSessionStore(db)
	} else {
		utils.SafeWarn("⚠️  DATABASE_URL not set, using in-memory cache and sessions")
		quoteCache = services.NewMemoryQuoteCache(nil)
		sessionStore = services.NewMemorySessionStore()
	}

	if cfg.CSGAPIKey == "" {
		utils.SafeWarn("⚠️  CSG_API_KEY not set, quote requests will fail")
	}
	csg := services.NewCSGClient(cfg.CSGBaseURL, cfg.CSGAPIKey, cfg.CSGTimeout)
	carriers := services.NewCarrierDirectory(csg,
		services.NewTTLCache[models.ProductLine, map[string]services.Company](cfg.CarrierCacheTTL, nil))

	quoteService := services.NewQuoteService(csg, quoteCache, carriers, cfg.QuoteCacheTTL)
	visitorService := services.NewVisitorService(sessionStore, sealer, cfg.SessionTTL)
	emailService := services.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.FrontendURL)
	if !emailService.Configured() {
		utils.SafeWarn("⚠️  RESEND_API_KEY or EMAIL_FROM not set, quote emails are disabled")
	}

	go scheduleCleanup(ctx, quoteService, visitorService)

	wsHandler := handlers.NewWSHandler()
	defer wsHandler.Close()

	router := gin.New()
	router.Use(gin.Recovery())

	utils.SafeInfo("🌍 CORS: Allowing origins: %v", cfg.AllowedOrigins)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-TOTP-Code"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute))

	routes.Setup(router, routes.Deps{
		Quotes:          quoteService,
		Sessions:        visitorService,
		Email:           emailService,
		WS:              wsHandler,
		JWTSecret:       cfg.JWTSecret,
		AdminTokenHash:  cfg.AdminTokenHash,
		AdminTOTPSecret: cfg.AdminTOTPSecret,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * cfg.CSGTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.SafeError("Shutdown failed: %v", err)
		}
	}()

	utils.LogStartup("Quote API", version, cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
}

func scheduleCleanup(ctx context.Context, quotes *services.QuoteService, sessions *services.VisitorService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		cleanExpired(ctx, quotes, sessions)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func cleanExpired(ctx context.Context, quotes *services.QuoteService, sessions *services.VisitorService) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := quotes.CleanExpiredCache(ctx); err != nil {
		utils.SafeError("❌ Cache cleanup failed: %v", err)
	}
	rows, err := sessions.CleanExpired(ctx)
	if err != nil {
		utils.SafeError("❌ Session cleanup failed: %v", err)
		return
	}
	if rows > 0 {
		utils.SafeInfo("🧹 Cleaned %d expired sessions", rows)
	}
}

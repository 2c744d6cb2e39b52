// internal/router/router.go
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/barter-backend/internal/ai"
	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/handlers"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/middleware"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

// Deps are the long-lived pieces main builds before routing. Generator and
// Storage may be nil.
type Deps struct {
	Config    *config.Config
	Store     store.Store
	Hub       *livequery.Hub
	Revoker   store.TokenRevoker
	Generator ai.TextGenerator
	Storage   *services.StorageService
}

// Initialize wires services and handlers onto a gin engine. The returned
// func releases background workers owned by the router.
func Initialize(deps Deps) (*gin.Engine, func(), error) {
	cfg := deps.Config
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	storageService := deps.Storage
	if storageService == nil {
		var err error
		storageService, err = services.NewStorageService(cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	// Initialize services
	notificationService := services.NewNotificationService(deps.Store, cfg, deps.Hub)
	authService := services.NewAuthService(deps.Store, cfg, deps.Revoker, notificationService)
	userService := services.NewUserService(deps.Store)
	listingService := services.NewListingService(deps.Store, deps.Hub)
	offerService := services.NewOfferService(deps.Store, deps.Hub, notificationService)
	messageService := services.NewMessageService(deps.Store, deps.Hub, notificationService)
	ratingService := services.NewRatingService(deps.Store)
	advisorService := services.NewAdvisorService(deps.Generator)
	liveQueryService := services.NewLiveQueryService(deps.Store, deps.Hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, ratingService)
	listingHandler := handlers.NewListingHandler(listingService, storageService, advisorService)
	offerHandler := handlers.NewOfferHandler(offerService, messageService, advisorService, ratingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWSHandler(liveQueryService, deps.Revoker, originPatterns(cfg.CORS.AllowedOrigins))

	limiters := middleware.NewRateLimiters(cfg.RateLimit)
	authRequired := middleware.AuthRequired(deps.Revoker)
	optionalAuth := middleware.OptionalAuth(deps.Revoker)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limiters.General.Middleware())
	r.Use(middleware.AuditLogMiddleware(deps.Store))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "barter-backend",
		})
	})

	if !storageService.IsS3() {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limiters.Auth.Middleware())
		{
			auth.POST("/anonymous", authHandler.SignInAnonymously)
			auth.POST("/custom-token", authHandler.SignInWithCustomToken)
			auth.POST("/register", optionalAuth, authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id/profile", userHandler.GetPublicProfile)
			users.GET("/:id/ratings", userHandler.GetRatings)
		}

		v1.GET("/meta/enums", handlers.GetEnums)

		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", optionalAuth, listingHandler.Browse)
			listings.GET("/:id", listingHandler.Get)

			protected := listings.Group("")
			protected.Use(authRequired)
			{
				protected.GET("/mine", listingHandler.Mine)
				protected.POST("", listingHandler.Create)
				protected.POST("/upload-images", listingHandler.UploadImages)
				protected.POST("/polish", limiters.Advisor.Middleware(), listingHandler.Polish)
			}
		}

		// Offer routes
		offers := v1.Group("/offers")
		offers.Use(authRequired)
		{
			offers.POST("", offerHandler.Propose)
			offers.GET("/incoming", offerHandler.Incoming)
			offers.GET("/mine", offerHandler.Mine)
			offers.GET("/:id", offerHandler.Get)
			offers.PUT("/:id/accept", offerHandler.Accept)
			offers.PUT("/:id/reject", offerHandler.Reject)
			offers.GET("/:id/messages", offerHandler.Messages)
			offers.POST("/:id/messages", offerHandler.SendMessage)
			offers.GET("/:id/advice", limiters.Advisor.Middleware(), offerHandler.Advice)
			offers.POST("/:id/ratings", offerHandler.Rate)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(authRequired)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Live queries authenticate through the token query parameter
		v1.GET("/ws", wsHandler.Handle)
	}

	return r, limiters.Stop, nil
}

// originPatterns turns CORS origins into the host patterns the websocket
// accept check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return []string{"*"}
		}
		origin = strings.TrimPrefix(origin, "https://")
		patterns = append(patterns, strings.TrimPrefix(origin, "http://"))
	}
	return patterns
}

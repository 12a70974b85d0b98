package routes

import (
	"github.com/campusloop/campusloop-backend/internal/handler"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	"github.com/campusloop/campusloop-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Handlers groups every HTTP handler mounted by Setup
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Listing *handler.ListingHandler
	Chat    *handler.ChatHandler
	WS      *handler.WSHandler
	Health  *handler.HealthHandler
}

// Options route level settings
type Options struct {
	UploadDir       string // served under /uploads when set
	RateLimitPerMin int
}

// Setup configures all API routes
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, redisClient *redis.Client, bundle *i18n.Bundle, opts Options) {
	auth := middleware.JWTAuth(jwtManager)

	rl := middleware.DefaultRateLimitConfig()
	if opts.RateLimitPerMin > 0 {
		rl.RequestsPerMinute = opts.RateLimitPerMin
	}
	limiter := middleware.RateLimit(redisClient, bundle, rl)

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	// Authentication endpoints (no auth required)
	router.POST("/register", limiter, h.Auth.Register)
	router.POST("/login", limiter, h.Auth.Login)

	// Products
	products := router.Group("/products")
	products.GET("", h.Product.List)
	products.POST("/upload", auth, h.Product.Upload)
	products.POST("/upload-image", limiter, h.Product.UploadImage)
	products.DELETE("/:id", auth, h.Product.Delete)

	// Per-user device state
	userRL := rl
	userRL.PerUser = true
	api := router.Group("/api/v1", auth, middleware.RateLimit(redisClient, bundle, userRL))

	marketplace := api.Group("/marketplace")
	marketplace.GET("/items", h.Listing.List)
	marketplace.POST("/items", h.Listing.Create)
	marketplace.POST("/items/:id/like", h.Listing.ToggleLike)
	marketplace.GET("/categories", h.Listing.Categories)

	chats := api.Group("/chats")
	chats.GET("", h.Chat.List)
	chats.POST("/:itemId/:counterpartyId", h.Chat.Open)
	chats.POST("/:itemId/:counterpartyId/messages", h.Chat.SendMessage)
	chats.POST("/:itemId/:counterpartyId/images", h.Chat.SendImage)
	chats.DELETE("/:itemId/:counterpartyId/session", h.Chat.CloseSession)

	// WebSocket
	router.GET("/ws/chats", auth, h.WS.Connect)
}

package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ngmstore/storefront/internal/config"
	"github.com/ngmstore/storefront/internal/server/http/handlers"
	"github.com/ngmstore/storefront/internal/server/http/middleware"
	"github.com/ngmstore/storefront/internal/upload"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StoreFacade, uploads upload.Store, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	limiter := middleware.NewRateLimiter()

	authHandler := handlers.NewAuthHandler(facade)
	productHandler := handlers.NewProductHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	proofHandler := handlers.NewProofHandler(facade, uploads)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)

	engine.Static("/uploads", cfg.UploadDir)

	api := engine.Group("/api")
	api.Use(limiter.General())

	users := api.Group("/users")
	users.POST("/register", limiter.Strict(), authHandler.Register)
	users.POST("/login", limiter.Strict(), authHandler.Login)
	users.GET("/profile", middleware.AuthRequired(facade), authHandler.Profile)

	products := api.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)

	productsAdmin := api.Group("/products")
	productsAdmin.Use(middleware.AuthRequired(facade), middleware.AdminRequired())
	productsAdmin.POST("", productHandler.Create)
	productsAdmin.PUT("/:id", productHandler.Update)
	productsAdmin.DELETE("/:id", productHandler.Delete)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(facade))
	orders.POST("", orderHandler.Create)
	orders.GET("/myorders", orderHandler.Mine)
	orders.GET("/:id", orderHandler.Get)

	ordersAdmin := api.Group("/orders")
	ordersAdmin.Use(middleware.AuthRequired(facade), middleware.AdminRequired())
	ordersAdmin.GET("", orderHandler.List)
	ordersAdmin.PUT("/:id/approve", orderHandler.Approve)
	ordersAdmin.PUT("/:id/ship", orderHandler.Ship)
	ordersAdmin.PUT("/:id/deliver", orderHandler.Deliver)

	proofs := api.Group("/payment-proofs")
	proofs.POST("", limiter.Strict(), middleware.OptionalAuth(facade), proofHandler.Submit)
	proofs.GET("", middleware.AuthRequired(facade), middleware.AdminRequired(), proofHandler.List)
	proofs.PUT("/:id/review", middleware.AuthRequired(facade), middleware.AdminRequired(), proofHandler.Review)

	payments := api.Group("/payments")
	payments.POST("/initialize", limiter.Strict(), middleware.AuthRequired(facade), paymentHandler.Initialize)
	payments.POST("/webhook", paymentHandler.Webhook)

	return engine
}

// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/stock"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// SetupRoutes wires all services and registers the API surface
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	// Shared infrastructure
	jwtManager := auth.NewJWTManager(cfg)

	// Domain services
	productService := product.NewService(db, cfg)
	stockLedger := stock.NewLedger(db, logger)
	cartStore := cart.NewStore(redisClient, logger)
	orderService := order.NewService(db, stockLedger, logger)
	verifier := payment.NewHMACVerifier(cfg.External.Razorpay.KeySecret)
	gateway := payment.NewRazorpayClient(cfg, logger)
	idempotencyStore := checkout.NewRedisIdempotencyStore(redisClient, cfg.Checkout.IdempotencyTTL)
	checkoutService := checkout.NewService(cfg, cartStore, productService, stockLedger, orderService, verifier, idempotencyStore, logger)

	// Handlers
	productHandler := handlers.NewProductHandler(productService, stockLedger, logger)
	cartHandler := handlers.NewCartHandler(cartStore, productService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	paymentHandler := handlers.NewPaymentHandler(cfg, gateway, checkoutService, logger)

	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	// Gateway webhook authenticates by signature, not bearer token
	rg.POST("/payment/webhook", paymentHandler.Webhook)

	// Authenticated user surface
	authed := rg.Group("")
	authed.Use(middleware.Auth(jwtManager))
	{
		cartGroup := authed.Group("/cart")
		{
			cartGroup.GET("", cartHandler.GetCart)
			cartGroup.POST("/items", cartHandler.AddItem)
			cartGroup.PUT("/items/:productId/:unitIndex", cartHandler.UpdateItem)
			cartGroup.DELETE("/items/:productId/:unitIndex", cartHandler.RemoveItem)
			cartGroup.DELETE("", cartHandler.ClearCart)
		}

		paymentGroup := authed.Group("/payment")
		{
			paymentGroup.GET("/methods", paymentHandler.GetMethods)
			paymentGroup.POST("/initiate", paymentHandler.InitiatePayment)
		}

		checkoutGroup := authed.Group("/checkout")
		{
			checkoutGroup.POST("/online", checkoutHandler.CheckoutOnline)
			checkoutGroup.POST("/cod", checkoutHandler.CheckoutCOD)
		}

		orders := authed.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		}
	}

	// Admin surface
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(jwtManager), middleware.AdminOnly())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.PUT("/products/:id/units/:index/stock", productHandler.SetUnitStock)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	}
}

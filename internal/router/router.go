// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/handlers"
	"github.com/agrilink/agrilink-backend/internal/middleware"
	"github.com/agrilink/agrilink-backend/internal/services"
)

// Setup wires services, handlers and routes onto a gin engine.
func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Services
	authzService := services.NewAuthorizationService()
	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db, authzService)
	paymentService := services.NewPaymentService(cfg)
	checkoutService := services.NewCheckoutService(db, authzService, paymentService)
	orderService := services.NewOrderService(db, authzService)
	ratingService := services.NewRatingService(db, authzService)
	farmerService := services.NewFarmerService(db, ratingService)
	adminService := services.NewAdminService(db)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, ratingService, authService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutService, authService)
	ratingHandler := handlers.NewRatingHandler(ratingService, authService)
	farmerHandler := handlers.NewFarmerHandler(farmerService, authService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService, orderService, productService, farmerService, authService, storageService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.I18n())
	r.Use(middleware.RateLimit())
	r.Use(middleware.AuditLog(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// Public
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	products := v1.Group("/products")
	products.Use(middleware.OptionalAuth())
	{
		products.GET("", productHandler.List)
		products.GET("/top", productHandler.Top)
		products.GET("/:id", productHandler.Get)
		products.GET("/:id/ratings", productHandler.Ratings)
	}

	// Authenticated (any role)
	me := v1.Group("/me")
	me.Use(middleware.AuthRequired())
	{
		me.GET("", authHandler.Me)
		me.PUT("", authHandler.UpdateProfile)
	}

	session := v1.Group("")
	session.Use(middleware.AuthRequired())
	{
		session.POST("/auth/logout", authHandler.Logout)
		session.POST("/farmer-applications", authHandler.ApplyAsFarmer)
	}

	orders := v1.Group("")
	orders.Use(middleware.AuthRequired())
	{
		orders.GET("/orders", orderHandler.List)
		orders.GET("/orders/stats", orderHandler.Stats)
		orders.GET("/orders/:id", orderHandler.Get)
	}

	// Buyer
	buyer := v1.Group("")
	buyer.Use(middleware.AuthRequired(), middleware.BuyerRequired(), middleware.ActiveRequired())
	{
		buyer.POST("/checkout", orderHandler.Checkout)
		buyer.POST("/orders/:id/cancel", orderHandler.Cancel)
		buyer.POST("/products/:id/ratings", ratingHandler.Rate)
	}

	// Farmer. Profile routes skip ActiveRequired so pending applicants
	// can still complete their application.
	farmerProfile := v1.Group("/farmer")
	farmerProfile.Use(middleware.AuthRequired(), middleware.FarmerRequired())
	{
		farmerProfile.GET("/profile", farmerHandler.GetProfile)
		farmerProfile.PUT("/profile", farmerHandler.UpdateProfile)
		farmerProfile.POST("/profile/permit", middleware.UploadRateLimit(), farmerHandler.UploadPermit)
	}

	farmer := v1.Group("/farmer")
	farmer.Use(middleware.AuthRequired(), middleware.FarmerRequired(), middleware.ActiveRequired())
	{
		farmer.GET("/dashboard", farmerHandler.Dashboard)
		farmer.GET("/products", productHandler.ListMine)
		farmer.POST("/products", productHandler.Create)
		farmer.PUT("/products/:id", productHandler.Update)
		farmer.DELETE("/products/:id", productHandler.Delete)
		farmer.POST("/uploads/image", middleware.UploadRateLimit(), productHandler.UploadImage)
		farmer.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	}

	// Admin
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/farmers", adminHandler.ListFarmers)
		admin.PUT("/farmers/:id/approve", adminHandler.ApproveFarmer)
		admin.PUT("/farmers/:id/reject", adminHandler.RejectFarmer)
		admin.DELETE("/farmers/:id", adminHandler.DeleteFarmer)
		admin.GET("/farmers/:id/permit", adminHandler.DownloadPermit)
		admin.GET("/products", adminHandler.ListProducts)
		admin.GET("/products/stats", adminHandler.ProductStats)
		admin.PUT("/products/:id/stock", adminHandler.UpdateProductStock)
		admin.DELETE("/products/:id", adminHandler.DeleteProduct)
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		admin.DELETE("/orders/:id", adminHandler.DeleteOrder)
	}

	return r, nil
}

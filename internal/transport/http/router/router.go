package router

import (
	"order-engine/internal/service"
	"order-engine/internal/transport/http/handlers"
	"order-engine/internal/transport/http/middleware"

	"github.com/gin-contrib/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func Router(orders service.OrderService, adminKey string, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	orderHandler := handlers.NewOrderHandler(orders, log)
	adminHandler := handlers.NewAdminHandler(orders, log)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-Id", "X-Session-Id", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/v1")

	// Колбэк шлюза приходит без заголовков владельца.
	api.POST("/payments/robokassa/callback", adminHandler.GatewayCallback)

	owned := api.Group("")
	owned.Use(middleware.OwnerRequired(log))
	{
		owned.GET("/cart", orderHandler.GetCart)
		owned.POST("/cart/items", orderHandler.AddCartItem)
		owned.DELETE("/cart/items/:productID", orderHandler.RemoveCartItem)

		owned.POST("/orders", orderHandler.InitOrder)
		owned.GET("/orders/:id", orderHandler.GetOrder)
		owned.POST("/orders/:id/pickup", orderHandler.SelectPickup)
		owned.POST("/orders/:id/coupon", orderHandler.ApplyCoupon)
		owned.DELETE("/orders/:id/coupon", orderHandler.RemoveCoupon)
		owned.POST("/orders/:id/finalize", orderHandler.Finalize)
		owned.POST("/orders/:id/payment", orderHandler.CreatePayment)

		owned.GET("/bonus/balance", orderHandler.BonusBalance)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(adminKey, log))
	{
		admin.POST("/orders/:id/status", adminHandler.UpdateStatus)
		admin.POST("/orders/:id/finalize", adminHandler.Finalize)
		admin.POST("/orders/:id/payment/complete", adminHandler.CompleteCashPayment)
	}

	return r
}

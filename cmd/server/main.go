package main

import (
	"log"

	"order_manager/internal/config"
	"order_manager/internal/database"
	"order_manager/internal/handlers"
	"order_manager/internal/redis"
	"order_manager/internal/repository"
	"order_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis. The server still runs without it: order codes fall
	// back to the database count and listings go uncached.
	var seq services.OrderSequencer
	var cache services.OrderCache
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
	} else {
		seq = redisClient
		cache = redisClient
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	orderService := services.NewOrderService(txManager, repos, seq, cache)
	importService := services.NewImportService(repos, orderService)
	customerService := services.NewCustomerService(repos.Customers)
	productService := services.NewProductService(repos.Products)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	importHandler := handlers.NewImportHandler(importService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.CreateOrMerge)
		api.POST("/orders/import", importHandler.Import)
		api.GET("/orders", orderHandler.List)
		api.GET("/orders/recent", orderHandler.ListRecent)
		api.GET("/orders/month/:month", orderHandler.ListByMonth)
		api.GET("/orders/:id", orderHandler.Get)
		api.PUT("/orders/:id", orderHandler.Replace)
		api.DELETE("/orders/:id", orderHandler.Delete)

		api.GET("/customers", customerHandler.List)
		api.POST("/customers", customerHandler.Create)
		api.GET("/customers/:id", customerHandler.Get)
		api.PUT("/customers/:id", customerHandler.Update)
		api.DELETE("/customers/:id", customerHandler.Delete)

		api.GET("/products", productHandler.List)
		api.POST("/products", productHandler.Create)
		api.GET("/products/:id", productHandler.Get)
		api.PUT("/products/:id", productHandler.Update)
		api.DELETE("/products/:id", productHandler.Delete)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order_manager/internal/config"
	"order_manager/internal/database"
	"order_manager/internal/handlers"
	"order_manager/internal/migrations"
	"order_manager/internal/models"
	"order_manager/internal/redis"
	"order_manager/internal/repository"
	"order_manager/internal/services"
	"order_manager/pkg/sheets"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Ledger mirror is optional; without credentials every mirror call
	// is a no-op and the rest of the system behaves identically.
	var mirror services.OrderMirror = services.NoopMirror{}
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsServiceAccount != "" {
		client, err := sheets.NewClient(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsName, cfg.SheetsServiceAccount, logger)
		if err != nil {
			logger.Warn("ledger mirror disabled", zap.Error(err))
		} else {
			mirror = client
			logger.Info("ledger mirror enabled", zap.String("sheet", cfg.SheetsName))
		}
	} else {
		logger.Warn("ledger mirror not configured, orders will not be mirrored")
	}

	lifecycle := models.LifecycleByName(cfg.OrderLifecycle)
	logger.Info("order lifecycle configured", zap.String("graph", cfg.OrderLifecycle))

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	// Initialize services
	orderService := services.NewOrderService(orderRepo, mirror, lifecycle, logger)
	menuService := services.NewMenuService(menuRepo)
	authService, err := services.NewAuthService(cfg.AdminPassphrase, redisClient, time.Duration(cfg.SessionTimeout)*time.Second)
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}
	watchManager := services.NewWatchManager(orderService, redisClient, time.Duration(cfg.WatchInterval)*time.Second, logger)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	menuHandler := handlers.NewMenuHandler(menuService)
	adminHandler := handlers.NewAdminHandler(authService, orderService, watchManager, logger)

	// Setup routes
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders", orderHandler.GetOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		api.PUT("/orders/:id", orderHandler.ReplaceOrder)
		api.DELETE("/orders/:id", orderHandler.DeleteOrder)

		api.GET("/menu", menuHandler.GetMenu)
		api.GET("/menu/category/:category", menuHandler.GetMenuByCategory)
		api.GET("/menu/:id", menuHandler.GetMenuItem)
		api.POST("/menu", menuHandler.CreateMenuItem)
		api.PUT("/menu/:id", menuHandler.UpdateMenuItem)
		api.DELETE("/menu/:id", menuHandler.DeleteMenuItem)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.DELETE("/sessions/:session_id", adminHandler.Logout)
			admin.GET("/sessions/:session_id/alert", adminHandler.GetAlert)
			admin.POST("/sessions/:session_id/alert/accept", adminHandler.AcceptAlert)
			admin.POST("/sessions/:session_id/alert/cancel", adminHandler.CancelAlert)
			admin.POST("/sessions/:session_id/alert/dismiss", adminHandler.DismissAlert)
			admin.POST("/orders/bulk-delete", adminHandler.BulkDelete)
			admin.GET("/stats", adminHandler.GetStats)
		}
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := router.Run(":" + cfg.ServerPort); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Error("Server error", zap.Error(err))
	}

	watchManager.StopAll()
	logger.Info("Server stopped")
}

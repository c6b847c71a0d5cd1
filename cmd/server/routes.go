package main

import (
	"log"
	"net/http"

	"stocktrack/config"
	"stocktrack/internal/database"
	"stocktrack/internal/gateway/handlers"
	"stocktrack/internal/gateway/middleware"
	balancehandler "stocktrack/internal/services/balance/handler"
	cataloghandler "stocktrack/internal/services/catalog/handler"
	ledgerhandler "stocktrack/internal/services/ledger/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()
	logger := config.GetLogger()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	catalogSvc := cataloghandler.NewCatalogHandler(db)
	ledgerSvc := ledgerhandler.NewLedgerHandler(db)
	balanceSvc := balancehandler.NewBalanceHandler(db, logger)

	itemHandler := handlers.NewItemHTTPHandler(catalogSvc, redisClient)
	locationHandler := handlers.NewLocationHTTPHandler(catalogSvc, redisClient)
	moveHandler := handlers.NewMoveHTTPHandler(ledgerSvc, redisClient)
	balanceHandler := handlers.NewBalanceHTTPHandler(balanceSvc, redisClient)

	r := gin.Default()

	r.Use(cors.Default())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())
	r.Use(middleware.RequestID())

	api := r.Group("/api/v1")
	{
		items := api.Group("/items")
		{
			items.POST("", itemHandler.CreateItem)
			items.GET("", itemHandler.ListItems)
			items.GET("/:id", itemHandler.GetItem)
			items.PUT("/:id", itemHandler.UpdateItem)
			items.DELETE("/:id", itemHandler.DeleteItem)
		}

		locations := api.Group("/locations")
		{
			locations.POST("", locationHandler.CreateLocation)
			locations.GET("", locationHandler.ListLocations)
			locations.GET("/:id", locationHandler.GetLocation)
			locations.PUT("/:id", locationHandler.UpdateLocation)
			locations.DELETE("/:id", locationHandler.DeleteLocation)
		}

		moves := api.Group("/moves")
		{
			moves.POST("", moveHandler.CreateMove)
			moves.POST("/batch", moveHandler.CreateMoves)
			moves.GET("", moveHandler.ListMoves)
			moves.GET("/:id", moveHandler.GetMove)
			moves.PUT("/:id", moveHandler.UpdateMove)
			moves.DELETE("/:id", moveHandler.DeleteMove)
		}

		api.GET("/balances", balanceHandler.ListBalances)
	}

	r.GET("/health", healthCheckHandler(db))

	port := ":" + cfg.HTTP.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{"status": status})
	}
}

package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/rtk5/Leetcode-daily-tracker/backend/config"
	"github.com/rtk5/Leetcode-daily-tracker/backend/leetcode"
	"github.com/rtk5/Leetcode-daily-tracker/backend/middleware"
	"github.com/rtk5/Leetcode-daily-tracker/backend/routes"
	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/tracker"
	"github.com/rtk5/Leetcode-daily-tracker/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Wire the ingestion pipeline
	st := store.New(db)
	client := leetcode.NewClient(cfg.LeetcodeAPIURL, cfg.FetchTimeout)
	t := tracker.New(st, client, logger, tracker.Config{
		DayOffset:  cfg.DayOffset,
		WindowDays: cfg.StreakWindow,
		MaxWorkers: cfg.RefreshWorkers,
	})

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, st, t, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}

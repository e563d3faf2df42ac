package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rtk5/Leetcode-daily-tracker/backend/config"
	"github.com/rtk5/Leetcode-daily-tracker/backend/controllers"
	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/tracker"
)

func SetupRoutes(app *fiber.App, st *store.Store, t *tracker.Tracker, cfg *config.Config) {
	// Ingestion trigger routes
	fetchController := controllers.NewFetchController(t)
	app.Get("/api/fetch", fetchController.FetchUser)
	app.Post("/api/refresh", fetchController.RefreshAll)

	// User routes
	userController := controllers.NewUserController(st, t)
	users := app.Group("/api/users")
	users.Get("/", userController.GetUsers)
	users.Post("/", userController.AddUser)
	users.Put("/:id/notes", userController.UpdateNotes)
	users.Delete("/:id", userController.DeleteUser)
	users.Get("/:username/daily", userController.GetDailyStats)

	// Stats routes
	statsController := controllers.NewStatsController(st, cfg)
	app.Get("/api/stats", statsController.GetGroupStats)
	app.Get("/api/logs", statsController.GetFetchLogs)
}

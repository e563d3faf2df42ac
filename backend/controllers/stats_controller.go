package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rtk5/Leetcode-daily-tracker/backend/config"
	"github.com/rtk5/Leetcode-daily-tracker/backend/models"
	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/streak"
	"github.com/rtk5/Leetcode-daily-tracker/backend/utils"
)

type StatsController struct {
	Store *store.Store
	Cfg   *config.Config
}

func NewStatsController(st *store.Store, cfg *config.Config) *StatsController {
	return &StatsController{Store: st, Cfg: cfg}
}

// GetGroupStats aggregates the dashboard numbers across all members.
// The group streak is the minimum current streak: one member missing a day
// breaks it for everyone.
func (sc *StatsController) GetGroupStats(c *fiber.Ctx) error {
	users, err := sc.Store.UsersByTotalSolved()
	if err != nil {
		return utils.InternalServerError(c, "Failed to load users")
	}

	stats := models.GroupStats{TotalMembers: len(users)}
	if len(users) == 0 {
		return utils.Success(c, fiber.StatusOK, stats)
	}

	today := streak.DayOf(time.Now(), sc.Cfg.DayOffset)
	minStreak := users[0].CurrentStreak
	for _, user := range users {
		stats.TotalProblems += user.TotalSolved
		if user.CurrentStreak < minStreak {
			minStreak = user.CurrentStreak
		}
		if user.LastFetchedAt != nil &&
			streak.DayOf(*user.LastFetchedAt, sc.Cfg.DayOffset) == today &&
			user.CurrentStreak > 0 {
			stats.ActiveToday++
		}
	}
	stats.GroupStreak = minStreak
	// Rounded to nearest, not truncated.
	stats.AverageProblems = (stats.TotalProblems + len(users)/2) / len(users)

	return utils.Success(c, fiber.StatusOK, stats)
}

// GetFetchLogs returns recent audit log entries, newest first.
func (sc *StatsController) GetFetchLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	logs, err := sc.Store.RecentFetchLogs(limit)
	if err != nil {
		return utils.InternalServerError(c, "Failed to load fetch logs")
	}

	return utils.Success(c, fiber.StatusOK, logs)
}

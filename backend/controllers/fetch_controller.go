package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rtk5/Leetcode-daily-tracker/backend/tracker"
	"github.com/rtk5/Leetcode-daily-tracker/backend/utils"
)

type FetchController struct {
	Tracker *tracker.Tracker
}

func NewFetchController(t *tracker.Tracker) *FetchController {
	return &FetchController{Tracker: t}
}

// FetchUser godoc
// @Summary Fetch LeetCode data for a user
// @Description Fetches the user's current LeetCode stats, updates streaks and daily snapshots
// @Tags fetch
// @Produce json
// @Param username query string true "LeetCode username"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /fetch [get]
func (fc *FetchController) FetchUser(c *fiber.Ctx) error {
	username := c.Query("username")

	outcome, err := fc.Tracker.Refresh(c.Context(), username)
	if err != nil {
		return fetchErrorResponse(c, err)
	}

	return utils.Success(c, fiber.StatusOK, outcome.Profile)
}

// RefreshAll refreshes every tracked user and reports per-user results.
// Partial failures do not fail the request.
func (fc *FetchController) RefreshAll(c *fiber.Ctx) error {
	outcomes, err := fc.Tracker.RefreshAll(c.Context())
	if err != nil {
		return utils.InternalServerError(c, "Failed to list users for refresh")
	}

	type refreshResult struct {
		Username string `json:"username"`
		Success  bool   `json:"success"`
		Error    string `json:"error,omitempty"`
	}

	results := make([]refreshResult, 0, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		result := refreshResult{Username: outcome.Username, Success: outcome.Err == nil}
		if outcome.Err != nil {
			failed++
			result.Error = outcome.Err.Error()
		}
		results = append(results, result)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"refreshed": len(outcomes) - failed,
		"failed":    failed,
		"results":   results,
	})
}

// fetchErrorResponse maps orchestrator errors onto HTTP statuses: missing
// parameter 400, upstream miss or fetch failure 404, store failure after a
// successful fetch 502, anything else 500.
func fetchErrorResponse(c *fiber.Ctx, err error) error {
	var fetchErr *tracker.FetchError
	var persistErr *tracker.PersistError

	switch {
	case errors.Is(err, tracker.ErrMissingUsername):
		return utils.BadRequest(c, "Username parameter is required")
	case errors.As(err, &fetchErr):
		return utils.NotFound(c, "Failed to fetch LeetCode data")
	case errors.As(err, &persistErr):
		return utils.BadGateway(c, "Fetched data but failed to save it")
	default:
		return utils.InternalServerError(c, "Unexpected error")
	}
}

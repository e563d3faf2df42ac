package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/tracker"
	"github.com/rtk5/Leetcode-daily-tracker/backend/utils"
)

type UserController struct {
	Store   *store.Store
	Tracker *tracker.Tracker
}

func NewUserController(st *store.Store, t *tracker.Tracker) *UserController {
	return &UserController{Store: st, Tracker: t}
}

type AddUserRequest struct {
	Username string `json:"username" example:"john_doe"`
	Notes    string `json:"notes" example:"Backend team"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// GetUsers godoc
// @Summary List tracked users
// @Description Returns all users ordered by total problems solved
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /users [get]
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	users, err := uc.Store.UsersByTotalSolved()
	if err != nil {
		return utils.InternalServerError(c, "Failed to load users")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

// AddUser godoc
// @Summary Add a user to the tracker
// @Description Registers a LeetCode username and performs the first fetch
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /users [post]
func (uc *UserController) AddUser(c *fiber.Ctx) error {
	var req AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if req.Username == "" {
		return utils.BadRequest(c, "Username parameter is required")
	}

	if _, err := uc.Store.UserByUsername(req.Username); err == nil {
		return utils.Conflict(c, "User already exists")
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return utils.InternalServerError(c, "Failed to check existing user")
	}

	outcome, err := uc.Tracker.Refresh(c.Context(), req.Username)
	if err != nil {
		return fetchErrorResponse(c, err)
	}

	if req.Notes != "" {
		outcome.User.Notes = req.Notes
		if err := uc.Store.SaveUser(outcome.User); err != nil {
			return utils.InternalServerError(c, "Failed to save notes")
		}
	}

	return utils.Created(c, outcome.User)
}

// UpdateNotes changes the free-form notes on a tracked user.
func (uc *UserController) UpdateNotes(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}

	var req UpdateNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	user, err := uc.Store.UserByID(uint(id))
	if errors.Is(err, store.ErrUserNotFound) {
		return utils.NotFound(c, "User not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Failed to load user")
	}

	user.Notes = req.Notes
	if err := uc.Store.SaveUser(user); err != nil {
		return utils.InternalServerError(c, "Failed to save notes")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

// DeleteUser removes a user from the tracker. Daily snapshots and audit
// log rows stay in place; they are diagnostic history, not user data the
// tracker owns.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}

	if _, err := uc.Store.UserByID(uint(id)); errors.Is(err, store.ErrUserNotFound) {
		return utils.NotFound(c, "User not found")
	} else if err != nil {
		return utils.InternalServerError(c, "Failed to load user")
	}

	if err := uc.Store.DeleteUser(uint(id)); err != nil {
		return utils.InternalServerError(c, "Failed to delete user")
	}

	return utils.NoContent(c)
}

// GetDailyStats returns the user's trailing daily snapshots, newest first.
func (uc *UserController) GetDailyStats(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := uc.Store.UserByUsername(username)
	if errors.Is(err, store.ErrUserNotFound) {
		return utils.NotFound(c, "User not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Failed to load user")
	}

	days := c.QueryInt("days", 30)
	if days <= 0 || days > 365 {
		days = 30
	}

	stats, err := uc.Store.DailyStatsForUser(user.ID, days)
	if err != nil {
		return utils.InternalServerError(c, "Failed to load daily stats")
	}

	return utils.Success(c, fiber.StatusOK, stats)
}

package api

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/notify"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// ActivityFeed provides the per-user activity entries served by GET /activity.
type ActivityFeed interface {
	ActivityFor(userID string) []notify.ActivityEntry
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	tasks         task.TaskPort
	activity      ActivityFeed
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer mono.ServiceContainer, authAdapter auth.AuthPort, tasks task.TaskPort, activity ActivityFeed) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		authAdapter:   authAdapter,
		tasks:         tasks,
		activity:      activity,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	authReq := auth.RegisterRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Email:     resp.Email,
		FullName:  resp.FullName,
		IsActive:  resp.IsActive,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	authReq := auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.RefreshToken,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Profile returns the current user's profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, "Failed to retrieve user profile", err)
	}

	return c.Status(fiber.StatusOK).JSON(toUserResponse(user))
}

// UpdateProfile updates the current user's email or full name.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Email == nil && req.FullName == nil {
		return badRequest(c, "No fields to update")
	}

	user, err := h.authAdapter.UpdateProfile(c.UserContext(), auth.UpdateProfileRequest{
		UserID:   claims.UserID,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toUserResponse(user))
}

// ChangePassword changes the current user's password.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "Current and new passwords are required")
	}

	if err := h.authAdapter.ChangePassword(c.UserContext(), auth.ChangePasswordRequest{
		UserID:          claims.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAccount removes the current user's account.
func (h *Handlers) DeleteAccount(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.authAdapter.DeleteAccount(c.UserContext(), claims.UserID); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTask creates a task owned by the current user.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.tasks.CreateTask(c.UserContext(), task.CreateTaskRequest{
		UserID:      claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListTasks lists the current user's tasks with optional filters.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := task.ListTasksRequest{
		UserID:   claims.UserID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Offset:   c.QueryInt("offset", 0),
		Limit:    c.QueryInt("limit", 0),
	}

	if raw := c.Query("due_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "due_after must be an RFC 3339 timestamp")
		}
		req.DueAfter = &t
	}
	if raw := c.Query("due_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "due_before must be an RFC 3339 timestamp")
		}
		req.DueBefore = &t
	}

	resp, err := h.tasks.ListTasks(c.UserContext(), req)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetTask returns one of the current user's tasks.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	found, err := h.tasks.GetTask(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

// UpdateTask applies a partial update to one of the current user's tasks.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.tasks.UpdateTask(c.UserContext(), task.UpdateTaskRequest{
		UserID:      claims.UserID,
		TaskID:      c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// SetTaskStatus updates only the status of one of the current user's tasks.
func (h *Handlers) SetTaskStatus(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.tasks.SetStatus(c.UserContext(), claims.UserID, c.Params("id"), req.Status)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTask removes one of the current user's tasks.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.tasks.DeleteTask(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TaskStats returns aggregate statistics over the current user's tasks.
func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	stats, err := h.tasks.Stats(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// Activity returns the current user's recorded activity, newest first.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	entries := h.activity.ActivityFor(claims.UserID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"activity": entries,
		"total":    len(entries),
	})
}

// handleAuthError maps auth service errors onto HTTP responses. Errors
// cross the service container as messages, so they are matched by content.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, auth.ErrInvalidCredentials.Error()):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, auth.ErrUserInactive.Error()):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User account is inactive",
		})
	case strings.Contains(errStr, auth.ErrUserExists.Error()):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, auth.ErrUserNotFound.Error()):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	case strings.Contains(errStr, auth.ErrInvalidEmail.Error()),
		strings.Contains(errStr, auth.ErrWeakPassword.Error()),
		strings.Contains(errStr, auth.ErrPasswordTooLong.Error()),
		strings.Contains(errStr, auth.ErrInvalidFullName.Error()):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: firstSentinel(errStr, auth.ErrInvalidEmail, auth.ErrWeakPassword, auth.ErrPasswordTooLong, auth.ErrInvalidFullName),
		})
	default:
		return internalError(c, "An internal error occurred", err)
	}
}

// handleTaskError maps task errors onto HTTP responses. The task adapter
// restores sentinel errors, so these match with errors.Is.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrTitleTooLong),
		errors.Is(err, task.ErrDescriptionTooLong),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidPriority):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		return internalError(c, "An internal error occurred", err)
	}
}

// firstSentinel returns the message of the first sentinel contained in the
// serialized error string.
func firstSentinel(errStr string, sentinels ...error) string {
	for _, sentinel := range sentinels {
		if strings.Contains(errStr, sentinel.Error()) {
			return sentinel.Error()
		}
	}
	return "validation failed"
}

func currentClaims(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

func internalError(c *fiber.Ctx, message string, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: message,
	})
}

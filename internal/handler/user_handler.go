package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
)

type UserCommander interface {
	CreateUser(ctx context.Context, cmd command.CreateUserCommand) (*models.UserView, error)
	UpdateUser(ctx context.Context, cmd command.UpdateUserCommand) (*models.UserView, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserQuerier interface {
	ListUsers() ([]models.UserView, error)
	GetUser(id string) (*models.UserView, error)
}

// UserHandler serves the admin-only user management routes.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Role        *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	IsSuspended *bool   `json:"isSuspended"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	user, err := h.commands.CreateUser(c.Request.Context(), command.CreateUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.queries.ListUsers()
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Users fetched successfully", users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.queries.GetUser(c.Param("id"))
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "User fetched successfully", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	user, err := h.commands.UpdateUser(c.Request.Context(), command.UpdateUserCommand{
		UserID:      c.Param("id"),
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		IsSuspended: req.IsSuspended,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.commands.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "User deleted successfully", nil)
}

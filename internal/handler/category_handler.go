package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
)

type CategoryCommander interface {
	CreateCategory(ctx context.Context, cmd command.CreateCategoryCommand) (*models.Category, error)
	UpdateCategory(ctx context.Context, cmd command.UpdateCategoryCommand) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryQuerier interface {
	ListCategories() ([]models.Category, error)
	GetCategory(id string) (*models.Category, error)
}

type CategoryHandler struct {
	commands CategoryCommander
	queries  CategoryQuerier
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1"`
	Type *string `json:"type" validate:"omitempty,oneof=INCOME EXPENSE"`
}

func NewCategoryHandler(commands CategoryCommander, queries CategoryQuerier) *CategoryHandler {
	return &CategoryHandler{commands: commands, queries: queries}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	category, err := h.commands.CreateCategory(c.Request.Context(), command.CreateCategoryCommand{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.queries.ListCategories()
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Categories fetched successfully", categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.queries.GetCategory(c.Param("id"))
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Category fetched successfully", category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	category, err := h.commands.UpdateCategory(c.Request.Context(), command.UpdateCategoryCommand{
		CategoryID: c.Param("id"),
		Name:       req.Name,
		Type:       req.Type,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.commands.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Category deleted successfully", nil)
}

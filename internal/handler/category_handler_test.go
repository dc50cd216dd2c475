package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/models"
)

// ---- mock implementations ----

type mockCategoryCommander struct {
	createFn func(command.CreateCategoryCommand) (*models.Category, error)
	updateFn func(command.UpdateCategoryCommand) (*models.Category, error)
	deleteFn func(string) error
}

func (m *mockCategoryCommander) CreateCategory(_ context.Context, cmd command.CreateCategoryCommand) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCategoryCommander) UpdateCategory(_ context.Context, cmd command.UpdateCategoryCommand) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCategoryCommander) DeleteCategory(_ context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return fmt.Errorf("not configured")
}

type mockCategoryQuerier struct {
	listFn func() ([]models.Category, error)
	getFn  func(string) (*models.Category, error)
}

func (m *mockCategoryQuerier) ListCategories() ([]models.Category, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCategoryQuerier) GetCategory(id string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newCategoryRouter(cmds CategoryCommander, qrys CategoryQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCategoryHandler(cmds, qrys)
	group := r.Group("/api/categories")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	return r
}

var testCategory = &models.Category{ID: "cat-001", Name: "Groceries", Type: models.CategoryTypeExpense}

// ---- tests ----

func TestCreateCategoryHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(command.CreateCategoryCommand) (*models.Category, error)
		expectedStatus int
	}{
		{
			name:           "success",
			body:           map[string]interface{}{"name": "Groceries", "type": "EXPENSE"},
			createFn:       func(cmd command.CreateCategoryCommand) (*models.Category, error) { return testCategory, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "conflict - duplicate name",
			body:           map[string]interface{}{"name": "Groceries", "type": "EXPENSE"},
			createFn:       func(cmd command.CreateCategoryCommand) (*models.Category, error) { return nil, apperr.Conflict("Category already exists") },
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad request - unknown type",
			body:           map[string]interface{}{"name": "Groceries", "type": "SAVINGS"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing name",
			body:           map[string]interface{}{"type": "EXPENSE"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockCategoryCommander{createFn: tt.createFn}
			router := newCategoryRouter(cmds, &mockCategoryQuerier{})
			w := doRequest(router, http.MethodPost, "/api/categories", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetCategoryHandler(t *testing.T) {
	qrys := &mockCategoryQuerier{
		getFn: func(id string) (*models.Category, error) {
			if id != "cat-001" {
				return nil, apperr.NotFound("Category not found")
			}
			return testCategory, nil
		},
	}
	router := newCategoryRouter(&mockCategoryCommander{}, qrys)

	w := doRequest(router, http.MethodGet, "/api/categories/cat-001", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/api/categories/cat-404", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestUpdateCategoryHandler(t *testing.T) {
	cmds := &mockCategoryCommander{
		updateFn: func(cmd command.UpdateCategoryCommand) (*models.Category, error) {
			if cmd.CategoryID != "cat-001" || cmd.Name == nil || *cmd.Name != "Food" {
				return nil, fmt.Errorf("partial update not forwarded")
			}
			return testCategory, nil
		},
	}
	router := newCategoryRouter(cmds, &mockCategoryQuerier{})

	w := doRequest(router, http.MethodPut, "/api/categories/cat-001", map[string]interface{}{"name": "Food"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPut, "/api/categories/cat-001", map[string]interface{}{"type": "SAVINGS"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestDeleteCategoryHandler(t *testing.T) {
	cmds := &mockCategoryCommander{
		deleteFn: func(id string) error {
			if id != "cat-001" {
				return apperr.NotFound("Category not found")
			}
			return nil
		},
	}
	router := newCategoryRouter(cmds, &mockCategoryQuerier{})

	w := doRequest(router, http.MethodDelete, "/api/categories/cat-001", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
}

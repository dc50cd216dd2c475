package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
)

type DashboardQuerier interface {
	UserSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	AdminSummary(ctx context.Context) (*models.AdminSummary, error)
	CategoryWiseExpense(ctx context.Context, userID, month, year string) ([]models.CategoryExpense, error)
	AdminTransactionsTrend(ctx context.Context, month, year string) ([]models.TrendPoint, error)
}

type DashboardHandler struct {
	queries DashboardQuerier
}

func NewDashboardHandler(queries DashboardQuerier) *DashboardHandler {
	return &DashboardHandler{queries: queries}
}

func (h *DashboardHandler) UserSummary(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	summary, err := h.queries.UserSummary(c.Request.Context(), ident.ID)
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Dashboard summary fetched successfully", summary)
}

func (h *DashboardHandler) AdminSummary(c *gin.Context) {
	summary, err := h.queries.AdminSummary(c.Request.Context())
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Admin summary fetched successfully", summary)
}

func (h *DashboardHandler) CategoryWiseExpense(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	rows, err := h.queries.CategoryWiseExpense(c.Request.Context(), ident.ID, c.Query("month"), c.Query("year"))
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Category wise expense fetched successfully", rows)
}

func (h *DashboardHandler) TransactionsTrend(c *gin.Context) {
	points, err := h.queries.AdminTransactionsTrend(c.Request.Context(), c.Query("month"), c.Query("year"))
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Transactions trend fetched successfully", points)
}

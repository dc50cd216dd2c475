package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
	"github.com/spendwise/api/internal/query"
)

type TransactionCommander interface {
	Create(ctx context.Context, kind models.TransactionKind, cmd command.CreateTransactionCommand) (*models.Transaction, error)
	Update(ctx context.Context, kind models.TransactionKind, requester command.Requester, cmd command.UpdateTransactionCommand) (*models.Transaction, error)
	Delete(ctx context.Context, kind models.TransactionKind, requester command.Requester, id string) error
}

type TransactionQuerier interface {
	List(kind models.TransactionKind, q query.ListTransactionsQuery) ([]models.TransactionView, error)
}

// TransactionHandler serves one transaction kind; the income and expense
// route groups each get their own instance.
type TransactionHandler struct {
	kind     models.TransactionKind
	entity   string
	commands TransactionCommander
	queries  TransactionQuerier
}

type CreateTransactionRequest struct {
	Amount      money.Cents `json:"amount" validate:"required"`
	Description string      `json:"description"`
	Date        *time.Time  `json:"date"`
	CategoryID  string      `json:"categoryId" validate:"required"`
	UserID      string      `json:"userId"`
}

type UpdateTransactionRequest struct {
	Amount      *money.Cents `json:"amount"`
	Description *string      `json:"description"`
	Date        *time.Time   `json:"date"`
	CategoryID  *string      `json:"categoryId"`
}

func NewTransactionHandler(kind models.TransactionKind, commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	entity := "Income"
	if kind == models.KindExpense {
		entity = "Expense"
	}
	return &TransactionHandler{kind: kind, entity: entity, commands: commands, queries: queries}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	// Only admins may create rows for another user.
	ownerID := ident.ID
	if req.UserID != "" && req.UserID != ident.ID {
		if ident.Role != models.RoleAdmin {
			middleware.RespondError(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		ownerID = req.UserID
	}

	tx, err := h.commands.Create(c.Request.Context(), h.kind, command.CreateTransactionCommand{
		UserID:      ownerID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusCreated, h.entity+" created successfully", tx)
}

func (h *TransactionHandler) List(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ownerID := ident.ID
	if requested := c.Query("userId"); requested != "" && requested != ident.ID {
		if ident.Role != models.RoleAdmin {
			middleware.RespondError(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		ownerID = requested
	}

	rows, err := h.queries.List(h.kind, query.ListTransactionsQuery{
		UserID: ownerID,
		Month:  c.Query("month"),
		Year:   c.Query("year"),
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, h.entity+"s fetched successfully", rows)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.commands.Update(c.Request.Context(), h.kind,
		command.Requester{UserID: ident.ID, Role: ident.Role},
		command.UpdateTransactionCommand{
			TransactionID: c.Param("id"),
			Amount:        req.Amount,
			Description:   req.Description,
			Date:          req.Date,
			CategoryID:    req.CategoryID,
		})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, h.entity+" updated successfully", tx)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	err := h.commands.Delete(c.Request.Context(), h.kind,
		command.Requester{UserID: ident.ID, Role: ident.Role}, c.Param("id"))
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, h.entity+" deleted successfully", nil)
}

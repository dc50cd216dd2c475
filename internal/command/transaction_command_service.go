package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/events"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
	"github.com/spendwise/api/internal/utils"
)

// TransactionStore is the write-side slice of the transaction repository.
type TransactionStore interface {
	Create(kind models.TransactionKind, tx *models.Transaction) error
	GetByID(kind models.TransactionKind, id string) (*models.Transaction, error)
	Update(kind models.TransactionKind, tx *models.Transaction) error
	Delete(kind models.TransactionKind, id string) error
}

// CategoryResolver checks category references on create/update.
type CategoryResolver interface {
	GetByID(id string) (*models.Category, error)
}

// SummaryInvalidator drops a user's cached dashboard summary after a write.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context, userID string)
}

type CreateTransactionCommand struct {
	UserID      string
	Amount      money.Cents
	Description string
	Date        *time.Time
	CategoryID  string
}

type UpdateTransactionCommand struct {
	TransactionID string
	Amount        *money.Cents
	Description   *string
	Date          *time.Time
	CategoryID    *string
}

// Requester identifies the caller for ownership checks.
type Requester struct {
	UserID string
	Role   string
}

// TransactionCommandService writes income and expense rows, keeping the
// cached dashboard summaries and the event stream in step.
type TransactionCommandService struct {
	transactions TransactionStore
	categories   CategoryResolver
	summaries    SummaryInvalidator
	publisher    EventPublisher
	now          func() time.Time
}

func NewTransactionCommandService(
	transactions TransactionStore,
	categories CategoryResolver,
	summaries SummaryInvalidator,
	publisher EventPublisher,
) *TransactionCommandService {
	return &TransactionCommandService{
		transactions: transactions,
		categories:   categories,
		summaries:    summaries,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Create validates the category reference (it must exist and its type must
// match the transaction kind — the store does not enforce this cross-field
// constraint) and inserts the row. Date defaults to now.
func (s *TransactionCommandService) Create(ctx context.Context, kind models.TransactionKind, cmd CreateTransactionCommand) (*models.Transaction, error) {
	if cmd.Amount <= 0 {
		return nil, apperr.Validation("Amount must be a positive number")
	}
	if err := s.checkCategory(kind, cmd.CategoryID); err != nil {
		return nil, err
	}

	now := s.now()
	date := now
	if cmd.Date != nil {
		date = *cmd.Date
	}

	tx := &models.Transaction{
		ID:          utils.GenerateID(idPrefix(kind)),
		Amount:      cmd.Amount,
		Description: cmd.Description,
		Date:        date,
		UserID:      cmd.UserID,
		CategoryID:  cmd.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.transactions.Create(kind, tx); err != nil {
		return nil, err
	}

	s.summaries.InvalidateSummary(ctx, tx.UserID)
	s.publish(ctx, events.TransactionCreated, kind, tx)
	return tx, nil
}

// Update merges only the supplied fields into the row. Only the owner (or an
// admin) may touch it.
func (s *TransactionCommandService) Update(ctx context.Context, kind models.TransactionKind, requester Requester, cmd UpdateTransactionCommand) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(kind, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(requester, tx.UserID); err != nil {
		return nil, err
	}

	if cmd.Amount != nil {
		if *cmd.Amount <= 0 {
			return nil, apperr.Validation("Amount must be a positive number")
		}
		tx.Amount = *cmd.Amount
	}
	if cmd.Description != nil {
		tx.Description = *cmd.Description
	}
	if cmd.Date != nil {
		tx.Date = *cmd.Date
	}
	if cmd.CategoryID != nil {
		if err := s.checkCategory(kind, *cmd.CategoryID); err != nil {
			return nil, err
		}
		tx.CategoryID = *cmd.CategoryID
	}
	tx.UpdatedAt = s.now()

	if err := s.transactions.Update(kind, tx); err != nil {
		return nil, err
	}

	s.summaries.InvalidateSummary(ctx, tx.UserID)
	s.publish(ctx, events.TransactionUpdated, kind, tx)
	return tx, nil
}

// Delete hard-deletes the row after an ownership check.
func (s *TransactionCommandService) Delete(ctx context.Context, kind models.TransactionKind, requester Requester, id string) error {
	tx, err := s.transactions.GetByID(kind, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(requester, tx.UserID); err != nil {
		return err
	}
	if err := s.transactions.Delete(kind, id); err != nil {
		return err
	}

	s.summaries.InvalidateSummary(ctx, tx.UserID)
	s.publish(ctx, events.TransactionDeleted, kind, tx)
	return nil
}

func (s *TransactionCommandService) checkCategory(kind models.TransactionKind, categoryID string) error {
	if categoryID == "" {
		return apperr.Validation("Category is required")
	}
	category, err := s.categories.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category.Type != kind.CategoryType() {
		return apperr.Validation(fmt.Sprintf("Category %q is not an %s category", category.Name, kind.CategoryType()))
	}
	return nil
}

func (s *TransactionCommandService) publish(ctx context.Context, eventType string, kind models.TransactionKind, tx *models.Transaction) {
	err := s.publisher.Publish(ctx, events.TransactionEventsStream, eventType, events.TransactionEvent{
		TransactionID: tx.ID,
		Kind:          string(kind),
		UserID:        tx.UserID,
		AmountCents:   int64(tx.Amount),
		CategoryID:    tx.CategoryID,
	})
	if err != nil {
		slog.Warn("failed to publish transaction event", "type", eventType, "error", err)
	}
}

func checkOwnership(requester Requester, ownerID string) error {
	if requester.UserID == ownerID || requester.Role == models.RoleAdmin {
		return nil
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}

func idPrefix(kind models.TransactionKind) string {
	if kind == models.KindIncome {
		return "inc"
	}
	return "exp"
}

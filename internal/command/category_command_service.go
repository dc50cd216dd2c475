package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/events"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/utils"
)

// CategoryStore is the slice of the category repository used by commands.
type CategoryStore interface {
	Create(category *models.Category) error
	GetByID(id string) (*models.Category, error)
	Update(category *models.Category) error
	Delete(id string) error
}

type CreateCategoryCommand struct {
	Name string
	Type string
}

type UpdateCategoryCommand struct {
	CategoryID string
	Name       *string
	Type       *string
}

// CategoryCommandService handles admin-only category writes.
type CategoryCommandService struct {
	categories CategoryStore
	publisher  EventPublisher
	now        func() time.Time
}

func NewCategoryCommandService(categories CategoryStore, publisher EventPublisher) *CategoryCommandService {
	return &CategoryCommandService{categories: categories, publisher: publisher, now: time.Now}
}

func (s *CategoryCommandService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*models.Category, error) {
	if cmd.Type != models.CategoryTypeIncome && cmd.Type != models.CategoryTypeExpense {
		return nil, apperr.Validation("Category type must be INCOME or EXPENSE")
	}

	now := s.now()
	category := &models.Category{
		ID:        utils.GenerateID("cat"),
		Name:      cmd.Name,
		Type:      cmd.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.Create(category); err != nil {
		return nil, err
	}

	s.publish(ctx, events.CategoryCreated, category)
	return category, nil
}

// UpdateCategory performs a partial merge: only supplied fields are written.
func (s *CategoryCommandService) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*models.Category, error) {
	category, err := s.categories.GetByID(cmd.CategoryID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		category.Name = *cmd.Name
	}
	if cmd.Type != nil {
		if *cmd.Type != models.CategoryTypeIncome && *cmd.Type != models.CategoryTypeExpense {
			return nil, apperr.Validation("Category type must be INCOME or EXPENSE")
		}
		category.Type = *cmd.Type
	}
	category.UpdatedAt = s.now()

	if err := s.categories.Update(category); err != nil {
		return nil, err
	}

	s.publish(ctx, events.CategoryUpdated, category)
	return category, nil
}

func (s *CategoryCommandService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categories.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(id); err != nil {
		return err
	}

	s.publish(ctx, events.CategoryDeleted, category)
	return nil
}

func (s *CategoryCommandService) publish(ctx context.Context, eventType string, category *models.Category) {
	err := s.publisher.Publish(ctx, events.CategoryEventsStream, eventType, events.CategoryEvent{
		CategoryID: category.ID,
		Name:       category.Name,
		Type:       category.Type,
	})
	if err != nil {
		slog.Warn("failed to publish category event", "type", eventType, "error", err)
	}
}

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

// AdminUserStore is the slice of the user repository the admin commands need.
type AdminUserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
}

type CreateUserCommand struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UpdateUserCommand struct {
	UserID      string
	Name        *string
	Email       *string
	Role        *string
	IsSuspended *bool
}

// UserCommandService handles admin-side user management.
type UserCommandService struct {
	users     AdminUserStore
	summaries SummaryInvalidator
	publisher EventPublisher
	now       func() time.Time
}

func NewUserCommandService(users AdminUserStore, summaries SummaryInvalidator, publisher EventPublisher) *UserCommandService {
	return &UserCommandService{users: users, summaries: summaries, publisher: publisher, now: time.Now}
}

// CreateUser provisions an account directly. Admin-created accounts skip the
// OTP round trip and start verified.
func (s *UserCommandService) CreateUser(ctx context.Context, cmd CreateUserCommand) (*models.UserView, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	role := cmd.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperr.Validation("Role must be USER or ADMIN")
	}

	now := s.now()
	user := &models.User{
		ID:            utils.GenerateID("usr"),
		Name:          cmd.Name,
		Email:         cmd.Email,
		PasswordHash:  passwordHash,
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	s.publishUser(ctx, events.UserCreated, user)
	return models.UserToView(user), nil
}

// UpdateUser merges only the supplied fields into the record.
func (s *UserCommandService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*models.UserView, error) {
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	suspending := false
	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.Email != nil {
		user.Email = *cmd.Email
	}
	if cmd.Role != nil {
		if *cmd.Role != models.RoleUser && *cmd.Role != models.RoleAdmin {
			return nil, apperr.Validation("Role must be USER or ADMIN")
		}
		user.Role = *cmd.Role
	}
	if cmd.IsSuspended != nil {
		suspending = *cmd.IsSuspended && !user.IsSuspended
		user.IsSuspended = *cmd.IsSuspended
	}
	user.UpdatedAt = s.now()

	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	if suspending {
		s.publishUser(ctx, events.UserSuspended, user)
	} else {
		s.publishUser(ctx, events.UserUpdated, user)
	}
	return models.UserToView(user), nil
}

// DeleteUser hard-deletes the account; the user's transactions go with it
// (FK cascade).
func (s *UserCommandService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.users.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(id); err != nil {
		return err
	}

	s.summaries.InvalidateSummary(ctx, id)
	s.publishUser(ctx, events.UserDeleted, user)
	return nil
}

func (s *UserCommandService) publishUser(ctx context.Context, eventType string, user *models.User) {
	err := s.publisher.Publish(ctx, events.UserEventsStream, eventType, events.UserEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		slog.Warn("failed to publish user event", "type", eventType, "error", err)
	}
}

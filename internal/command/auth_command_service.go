package command

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/events"
	"github.com/spendwise/api/internal/mailer"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/utils"
)

const otpLength = 6

// UserStore is the slice of the user repository the auth commands need.
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	SetOTP(id, code string, expiresAt time.Time) error
	MarkVerified(id string) error
	UpdatePassword(id, passwordHash string) error
}

// EventPublisher pushes domain events onto the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type SignUpCommand struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type VerifyOTPCommand struct {
	Email string
	Code  string
}

type ResendOTPCommand struct {
	Email string
}

type ChangePasswordCommand struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// AuthCommandService handles the mutating half of the credential workflow:
// account creation, email verification and password rotation.
type AuthCommandService struct {
	users     UserStore
	mail      mailer.Mailer
	publisher EventPublisher
	otpTTL    time.Duration
	now       func() time.Time
}

func NewAuthCommandService(users UserStore, mail mailer.Mailer, publisher EventPublisher, otpTTL time.Duration) *AuthCommandService {
	return &AuthCommandService{
		users:     users,
		mail:      mail,
		publisher: publisher,
		otpTTL:    otpTTL,
		now:       time.Now,
	}
}

// SignUp creates an unverified account and dispatches the verification code.
// When dispatch fails the account still exists; the returned error says so
// explicitly so clients re-request a code instead of retrying sign-up into
// the email uniqueness conflict.
func (s *AuthCommandService) SignUp(ctx context.Context, cmd SignUpCommand) (*models.UserView, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	role := cmd.Role
	if role == "" {
		role = models.RoleUser
	}

	now := s.now()
	otp := utils.GenerateOTP(otpLength)
	otpExpires := now.Add(s.otpTTL)

	user := &models.User{
		ID:              utils.GenerateID("usr"),
		Name:            cmd.Name,
		Email:           cmd.Email,
		PasswordHash:    passwordHash,
		Role:            role,
		EmailVerified:   false,
		VerificationOTP: otp,
		OTPExpiresAt:    &otpExpires,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}); err != nil {
		slog.Warn("failed to publish user.created event", "error", err)
	}

	if err := s.mail.SendOTP(ctx, user.Email, user.Name, otp); err != nil {
		return models.UserToView(user), apperr.Wrap(
			apperr.CodeEmailDispatch,
			"Account created but the verification email could not be delivered. Please request a new code.",
			err,
		)
	}

	return models.UserToView(user), nil
}

// VerifyOTP consumes a verification code. Calling it again after success is
// an idempotent no-op.
func (s *AuthCommandService) VerifyOTP(ctx context.Context, cmd VerifyOTPCommand) (*models.UserView, error) {
	user, err := s.users.GetByEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	if user.EmailVerified {
		return models.UserToView(user), nil
	}

	if user.VerificationOTP == "" ||
		subtle.ConstantTimeCompare([]byte(user.VerificationOTP), []byte(cmd.Code)) != 1 {
		return nil, apperr.New(apperr.CodeOTPInvalid, "Invalid verification code")
	}
	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return nil, apperr.New(apperr.CodeOTPExpired, "Verification code has expired")
	}

	if err := s.users.MarkVerified(user.ID); err != nil {
		return nil, err
	}
	user.EmailVerified = true
	user.VerificationOTP = ""
	user.OTPExpiresAt = nil

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserVerified, events.UserEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}); err != nil {
		slog.Warn("failed to publish user.verified event", "error", err)
	}

	return models.UserToView(user), nil
}

// ResendOTP replaces the pending verification code with a fresh one and
// re-dispatches it. The previous code stops working immediately.
func (s *AuthCommandService) ResendOTP(ctx context.Context, cmd ResendOTPCommand) error {
	user, err := s.users.GetByEmail(cmd.Email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperr.Validation("Email is already verified")
	}

	otp := utils.GenerateOTP(otpLength)
	if err := s.users.SetOTP(user.ID, otp, s.now().Add(s.otpTTL)); err != nil {
		return err
	}

	if err := s.mail.SendOTP(ctx, user.Email, user.Name, otp); err != nil {
		return apperr.Wrap(
			apperr.CodeEmailDispatch,
			"The verification email could not be delivered. Please try again later.",
			err,
		)
	}
	return nil
}

// ChangePassword rotates the credential after re-checking the current one.
func (s *AuthCommandService) ChangePassword(ctx context.Context, cmd ChangePasswordCommand) error {
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(cmd.CurrentPassword, user.PasswordHash) {
		return apperr.Validation("Current password is incorrect")
	}

	passwordHash, err := utils.HashPassword(cmd.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.users.UpdatePassword(user.ID, passwordHash)
}

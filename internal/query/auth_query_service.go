package query

import (
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/token"
	"github.com/spendwise/api/internal/utils"
)

// UserReader is the read-side slice of the user repository.
type UserReader interface {
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

type SignInQuery struct {
	Email    string
	Password string
}

// AuthQueryService handles sign-in and identity lookup. Sign-in lives on the
// read side because it mutates nothing — it only verifies state and issues a
// token.
type AuthQueryService struct {
	users  UserReader
	tokens *token.Manager
}

func NewAuthQueryService(users UserReader, tokens *token.Manager) *AuthQueryService {
	return &AuthQueryService{users: users, tokens: tokens}
}

// SignIn checks the credential and the account state machine in order:
// unknown email, bad password, unverified email, suspension. The unverified
// signal is machine-readable so clients can route to the verification flow.
func (s *AuthQueryService) SignIn(q SignInQuery) (*models.UserView, string, error) {
	user, err := s.users.GetByEmail(q.Email)
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPassword(q.Password, user.PasswordHash) {
		return nil, "", apperr.Unauthenticated("Invalid credentials")
	}
	if !user.EmailVerified {
		return nil, "", apperr.New(apperr.CodeNotVerified, "Email verification required")
	}
	if user.IsSuspended {
		return nil, "", apperr.New(apperr.CodeSuspended, "Account suspended")
	}

	signed, err := s.tokens.Issue(user.ID, user.Role, user.Email)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return models.UserToView(user), signed, nil
}

// Me returns the caller's credential-stripped profile.
func (s *AuthQueryService) Me(userID string) (*models.UserView, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return models.UserToView(user), nil
}

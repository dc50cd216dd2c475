package query

import (
	"github.com/spendwise/api/internal/models"
)

// UserLister is the admin read-side slice of the user repository.
type UserLister interface {
	GetByID(id string) (*models.User, error)
	List() ([]models.User, error)
}

// UserQueryService serves the admin user-management reads.
type UserQueryService struct {
	users UserLister
}

func NewUserQueryService(users UserLister) *UserQueryService {
	return &UserQueryService{users: users}
}

// ListUsers returns all non-admin users.
func (s *UserQueryService) ListUsers() ([]models.UserView, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, *models.UserToView(&users[i]))
	}
	return views, nil
}

func (s *UserQueryService) GetUser(id string) (*models.UserView, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	return models.UserToView(user), nil
}

package query

import (
	"github.com/spendwise/api/internal/models"
)

// CategoryReader is the read-side slice of the category repository.
type CategoryReader interface {
	GetByID(id string) (*models.Category, error)
	List() ([]models.Category, error)
}

type CategoryQueryService struct {
	categories CategoryReader
}

func NewCategoryQueryService(categories CategoryReader) *CategoryQueryService {
	return &CategoryQueryService{categories: categories}
}

func (s *CategoryQueryService) ListCategories() ([]models.Category, error) {
	return s.categories.List()
}

func (s *CategoryQueryService) GetCategory(id string) (*models.Category, error) {
	return s.categories.GetByID(id)
}

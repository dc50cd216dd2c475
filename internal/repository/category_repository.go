package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query, category.ID, category.Name, category.Type, category.CreatedAt, category.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("Category already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(id string) (*models.Category, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM categories WHERE id = $1`

	var category models.Category
	err := r.db.QueryRow(query, id).Scan(
		&category.ID, &category.Name, &category.Type, &category.CreatedAt, &category.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) List() ([]models.Category, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM categories ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Type, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(category *models.Category) error {
	query := `UPDATE categories SET name = $2, type = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.Exec(query, category.ID, category.Name, category.Type, category.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("Category already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRow(res, "category")
}

// Delete removes the category. Referencing transactions keep their rows with
// a null category (FK ON DELETE SET NULL), which surfaces downstream as
// "Uncategorized".
func (r *CategoryRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(res, "category")
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
)

// Window is a closed [From, To] reporting interval.
type Window struct {
	From time.Time
	To   time.Time
}

// TransactionRepository serves both transaction variants; the kind argument
// picks the backing table (incomes or expenses).
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(kind models.TransactionKind, tx *models.Transaction) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, amount_cents, description, date, user_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, kind.Table())
	_, err := r.db.Exec(query,
		tx.ID, int64(tx.Amount), nullString(tx.Description), tx.Date,
		tx.UserID, nullString(tx.CategoryID), tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(kind models.TransactionKind, id string) (*models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, amount_cents, description, date, user_id, category_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, kind.Table())

	var tx models.Transaction
	var amountCents int64
	var description, categoryID sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&tx.ID, &amountCents, &description, &tx.Date,
		&tx.UserID, &categoryID, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, notFoundFor(kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}

	tx.Amount = money.Cents(amountCents)
	tx.Description = description.String
	tx.CategoryID = categoryID.String
	return &tx, nil
}

// ListByUser returns the owner's transactions joined to their category name,
// optionally restricted to a window, newest first.
func (r *TransactionRepository) ListByUser(kind models.TransactionKind, userID string, window *Window) ([]models.TransactionView, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.amount_cents, t.description, t.date, t.user_id, t.category_id, c.name, t.created_at
		FROM %s t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1
	`, kind.Table())
	args := []any{userID}
	if window != nil {
		query += ` AND t.date >= $2 AND t.date <= $3`
		args = append(args, window.From, window.To)
	}
	query += ` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	defer rows.Close()

	var views []models.TransactionView
	for rows.Next() {
		var view models.TransactionView
		var amountCents int64
		var description, categoryID, categoryName sql.NullString

		if err := rows.Scan(
			&view.ID, &amountCents, &description, &view.Date,
			&view.UserID, &categoryID, &categoryName, &view.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		view.Amount = money.Cents(amountCents)
		view.Description = description.String
		view.CategoryID = categoryID.String
		view.CategoryName = categoryName.String
		views = append(views, view)
	}
	return views, rows.Err()
}

func (r *TransactionRepository) Update(kind models.TransactionKind, tx *models.Transaction) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET amount_cents = $2, description = $3, date = $4, category_id = $5, updated_at = $6
		WHERE id = $1
	`, kind.Table())
	res, err := r.db.Exec(query,
		tx.ID, int64(tx.Amount), nullString(tx.Description), tx.Date,
		nullString(tx.CategoryID), tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return requireRow(res, string(kind))
}

func (r *TransactionRepository) Delete(kind models.TransactionKind, id string) error {
	res, err := r.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.Table()), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return requireRow(res, string(kind))
}

// SumCentsByUser totals the owner's rows over all time.
func (r *TransactionRepository) SumCentsByUser(kind models.TransactionKind, userID string) (money.Cents, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(amount_cents), 0) FROM %s WHERE user_id = $1`, kind.Table())
	var sum int64
	if err := r.db.QueryRow(query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum %ss: %w", kind, err)
	}
	return money.Cents(sum), nil
}

// SumCentsByUserBetween totals the owner's rows with date in [from, to).
func (r *TransactionRepository) SumCentsByUserBetween(kind models.TransactionKind, userID string, from, to time.Time) (money.Cents, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM %s WHERE user_id = $1 AND date >= $2 AND date < $3`,
		kind.Table(),
	)
	var sum int64
	if err := r.db.QueryRow(query, userID, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum %ss: %w", kind, err)
	}
	return money.Cents(sum), nil
}

func (r *TransactionRepository) CountAll(kind models.TransactionKind) (int, error) {
	var count int
	if err := r.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind.Table())).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %ss: %w", kind, err)
	}
	return count, nil
}

func (r *TransactionRepository) CountSince(kind models.TransactionKind, t time.Time) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE date >= $1`, kind.Table())
	var count int
	if err := r.db.QueryRow(query, t).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %ss: %w", kind, err)
	}
	return count, nil
}

// CategoryRow is one expense row with its resolved category name, used by
// the category breakdown aggregation.
type CategoryRow struct {
	CategoryName sql.NullString
	AmountCents  int64
}

// ExpenseRowsByUser returns the owner's expense rows in the window joined to
// category names, in stable first-insertion order.
func (r *TransactionRepository) ExpenseRowsByUser(userID string, window Window) ([]CategoryRow, error) {
	query := `
		SELECT c.name, e.amount_cents
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.date >= $2 AND e.date <= $3
		ORDER BY e.created_at ASC, e.id ASC
	`
	rows, err := r.db.Query(query, userID, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expense rows: %w", err)
	}
	defer rows.Close()

	var result []CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.CategoryName, &row.AmountCents); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// DatesBetween returns the date column of every row in the window.
func (r *TransactionRepository) DatesBetween(kind models.TransactionKind, window Window) ([]time.Time, error) {
	query := fmt.Sprintf(`SELECT date FROM %s WHERE date >= $1 AND date <= $2`, kind.Table())
	rows, err := r.db.Query(query, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s dates: %w", kind, err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func notFoundFor(kind models.TransactionKind) error {
	if kind == models.KindIncome {
		return apperr.NotFound("Income not found")
	}
	return apperr.NotFound("Expense not found")
}

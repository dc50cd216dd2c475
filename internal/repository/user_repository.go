package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, email_verified,
	   verification_otp, otp_expires_at, is_suspended, created_at, updated_at`

func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, email_verified,
						   verification_otp, otp_expires_at, is_suspended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.EmailVerified, nullString(user.VerificationOTP), user.OTPExpiresAt,
		user.IsSuspended, user.CreatedAt, user.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("User already created")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(query, id))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(query, email))
}

// List returns all non-admin users, newest first.
func (r *UserRepository) List() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role != $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, is_suspended = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.Exec(query, user.ID, user.Name, user.Email, user.Role, user.IsSuspended, user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("Email already in use")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, "user")
}

func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	res, err := r.db.Exec(`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res, "user")
}

// SetOTP stores a fresh verification code and its expiry.
func (r *UserRepository) SetOTP(id, code string, expiresAt time.Time) error {
	res, err := r.db.Exec(
		`UPDATE users SET verification_otp = $2, otp_expires_at = $3, updated_at = now() WHERE id = $1`,
		id, code, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	return requireRow(res, "user")
}

// MarkVerified flips the verified flag and clears OTP state in a single
// statement, so there is no read-then-write window.
func (r *UserRepository) MarkVerified(id string) error {
	res, err := r.db.Exec(
		`UPDATE users
		 SET email_verified = TRUE, verification_otp = NULL, otp_expires_at = NULL, updated_at = now()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return requireRow(res, "user")
}

func (r *UserRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res, "user")
}

func (r *UserRepository) CountByRole(role string) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) CountCreatedSince(t time.Time) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE created_at >= $1`, t).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var otp sql.NullString
	var otpExpires sql.NullTime

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.EmailVerified, &otp, &otpExpires, &user.IsSuspended,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if otp.Valid {
		user.VerificationOTP = otp.String
	}
	if otpExpires.Valid {
		t := otpExpires.Time
		user.OTPExpiresAt = &t
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(entityMessage(entity))
	}
	return nil
}

func entityMessage(entity string) string {
	switch entity {
	case "user":
		return "User not found"
	case "category":
		return "Category not found"
	case "income":
		return "Income not found"
	default:
		return "Expense not found"
	}
}

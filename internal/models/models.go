package models

import (
	"time"

	"github.com/spendwise/api/internal/money"
)

// Roles carried in the session token and the users table.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Category types. A category's type decides which transaction kind may
// reference it.
const (
	CategoryTypeIncome  = "INCOME"
	CategoryTypeExpense = "EXPENSE"
)

// TransactionKind selects between the income and expense variants, which
// share a shape but live in separate tables.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Table returns the backing table for the kind.
func (k TransactionKind) Table() string {
	if k == KindIncome {
		return "incomes"
	}
	return "expenses"
}

// CategoryType returns the category type a transaction of this kind must
// reference.
func (k TransactionKind) CategoryType() string {
	if k == KindIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	EmailVerified   bool       `json:"emailVerified"`
	VerificationOTP string     `json:"-"`
	OTPExpiresAt    *time.Time `json:"-"`
	IsSuspended     bool       `json:"isSuspended"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is a single income or expense row. CategoryID is nullable
// because deleting a category orphans its rows rather than blocking.
type Transaction struct {
	ID          string      `json:"id"`
	Amount      money.Cents `json:"amount"`
	Description string      `json:"description,omitempty"`
	Date        time.Time   `json:"date"`
	UserID      string      `json:"userId"`
	CategoryID  string      `json:"categoryId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

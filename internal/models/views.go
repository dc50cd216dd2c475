package models

import (
	"time"

	"github.com/spendwise/api/internal/money"
)

// UserView is the read-optimised projection of a user.
// It never exposes the password hash or OTP state.
type UserView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	IsSuspended   bool      `json:"isSuspended"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransactionView is the transaction projection returned by list endpoints,
// carrying the resolved category name for display.
type TransactionView struct {
	ID           string      `json:"id"`
	Amount       money.Cents `json:"amount"`
	Description  string      `json:"description,omitempty"`
	Date         time.Time   `json:"date"`
	UserID       string      `json:"userId"`
	CategoryID   string      `json:"categoryId,omitempty"`
	CategoryName string      `json:"categoryName,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// DashboardSummary is the per-user lifetime rollup.
type DashboardSummary struct {
	TotalIncome       money.Cents `json:"totalIncome"`
	TotalExpenses     money.Cents `json:"totalExpenses"`
	TotalSavings      money.Cents `json:"totalSavings"`
	ThisMonthExpenses money.Cents `json:"thisMonthExpenses"`
}

// AdminSummary carries system-wide counts only, no amounts.
type AdminSummary struct {
	TotalUsers         int `json:"totalUsers"`
	TotalTransactions  int `json:"totalTransactions"`
	TodaysTransactions int `json:"todaysTransactions"`
	TodaysJoinUser     int `json:"todaysJoinUser"`
}

// CategoryExpense is one slice of the category-wise expense breakdown.
// Fill is a chart color cycled from a fixed palette.
type CategoryExpense struct {
	Category string      `json:"category"`
	Amount   money.Cents `json:"amount"`
	Fill     string      `json:"fill"`
}

// TrendPoint is one day of the admin transactions trend. Days with no
// activity still appear with a zero count.
type TrendPoint struct {
	Date         string `json:"date"`
	Transactions int    `json:"transactions"`
}

func UserToView(u *User) *UserView {
	return &UserView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsSuspended:   u.IsSuspended,
		CreatedAt:     u.CreatedAt,
	}
}

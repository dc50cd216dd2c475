package query

import (
	"time"

	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/repository"
)

// TransactionLister is the read-side slice of the transaction repository.
type TransactionLister interface {
	ListByUser(kind models.TransactionKind, userID string, window *repository.Window) ([]models.TransactionView, error)
}

type ListTransactionsQuery struct {
	UserID string
	Month  string
	Year   string
}

// TransactionQueryService serves the owner-scoped income/expense lists.
type TransactionQueryService struct {
	transactions TransactionLister
	now          func() time.Time
}

func NewTransactionQueryService(transactions TransactionLister) *TransactionQueryService {
	return &TransactionQueryService{transactions: transactions, now: time.Now}
}

// List returns the owner's rows, optionally filtered to a month/year window.
// A partial filter (month without year, or the reverse) is treated as absent
// and the list stays unbounded.
func (s *TransactionQueryService) List(kind models.TransactionKind, q ListTransactionsQuery) ([]models.TransactionView, error) {
	window := ResolveWindow(q.Month, q.Year, s.now())
	return s.transactions.ListByUser(kind, q.UserID, window)
}

package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
)

// ---- fakes ----

type fakeTransactionStore struct {
	rows map[string]*models.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{rows: make(map[string]*models.Transaction)}
}

func (s *fakeTransactionStore) Create(kind models.TransactionKind, tx *models.Transaction) error {
	s.rows[tx.ID] = tx
	return nil
}

func (s *fakeTransactionStore) GetByID(kind models.TransactionKind, id string) (*models.Transaction, error) {
	tx, ok := s.rows[id]
	if !ok {
		if kind == models.KindIncome {
			return nil, apperr.NotFound("Income not found")
		}
		return nil, apperr.NotFound("Expense not found")
	}
	return tx, nil
}

func (s *fakeTransactionStore) Update(kind models.TransactionKind, tx *models.Transaction) error {
	s.rows[tx.ID] = tx
	return nil
}

func (s *fakeTransactionStore) Delete(kind models.TransactionKind, id string) error {
	delete(s.rows, id)
	return nil
}

type fakeCategoryResolver struct {
	categories map[string]*models.Category
}

func (r *fakeCategoryResolver) GetByID(id string) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, apperr.NotFound("Category not found")
	}
	return c, nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) InvalidateSummary(_ context.Context, userID string) {
	f.invalidated = append(f.invalidated, userID)
}

// ---- tests ----

func newTransactionService(store *fakeTransactionStore) (*TransactionCommandService, *fakeInvalidator, *fakePublisher) {
	categories := &fakeCategoryResolver{categories: map[string]*models.Category{
		"cat-salary": {ID: "cat-salary", Name: "Salary", Type: models.CategoryTypeIncome},
		"cat-food":   {ID: "cat-food", Name: "Food", Type: models.CategoryTypeExpense},
	}}
	inv := &fakeInvalidator{}
	pub := &fakePublisher{}
	svc := NewTransactionCommandService(store, categories, inv, pub)
	svc.now = func() time.Time {
		return time.Date(2024, time.April, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, inv, pub
}

func TestCreateTransaction(t *testing.T) {
	store := newFakeTransactionStore()
	svc, inv, pub := newTransactionService(store)

	tx, err := svc.Create(context.Background(), models.KindIncome, CreateTransactionCommand{
		UserID:     "usr-001",
		Amount:     50000,
		CategoryID: "cat-salary",
	})
	require.NoError(t, err)

	assert.Equal(t, "usr-001", tx.UserID)
	assert.Equal(t, money.Cents(50000), tx.Amount)
	assert.Equal(t, svc.now(), tx.Date, "date defaults to now when omitted")
	assert.Contains(t, tx.ID, "inc-")
	assert.Equal(t, []string{"usr-001"}, inv.invalidated)
	assert.Contains(t, pub.events, "transaction.created")
}

func TestCreateTransactionValidation(t *testing.T) {
	store := newFakeTransactionStore()
	svc, _, _ := newTransactionService(store)

	tests := []struct {
		name     string
		kind     models.TransactionKind
		cmd      CreateTransactionCommand
		wantCode apperr.Code
	}{
		{
			name:     "zero amount",
			kind:     models.KindIncome,
			cmd:      CreateTransactionCommand{UserID: "usr-001", Amount: 0, CategoryID: "cat-salary"},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "missing category",
			kind:     models.KindIncome,
			cmd:      CreateTransactionCommand{UserID: "usr-001", Amount: 100},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "unknown category",
			kind:     models.KindIncome,
			cmd:      CreateTransactionCommand{UserID: "usr-001", Amount: 100, CategoryID: "cat-ghost"},
			wantCode: apperr.CodeNotFound,
		},
		{
			name:     "expense category on income",
			kind:     models.KindIncome,
			cmd:      CreateTransactionCommand{UserID: "usr-001", Amount: 100, CategoryID: "cat-food"},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "income category on expense",
			kind:     models.KindExpense,
			cmd:      CreateTransactionCommand{UserID: "usr-001", Amount: 100, CategoryID: "cat-salary"},
			wantCode: apperr.CodeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.kind, tt.cmd)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}

func TestUpdateTransactionOwnership(t *testing.T) {
	store := newFakeTransactionStore()
	svc, _, _ := newTransactionService(store)

	tx, err := svc.Create(context.Background(), models.KindExpense, CreateTransactionCommand{
		UserID:     "usr-001",
		Amount:     2500,
		CategoryID: "cat-food",
	})
	require.NoError(t, err)

	newAmount := money.Cents(3000)

	// Another plain user cannot touch the row.
	_, err = svc.Update(context.Background(), models.KindExpense,
		Requester{UserID: "usr-002", Role: models.RoleUser},
		UpdateTransactionCommand{TransactionID: tx.ID, Amount: &newAmount})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	// The owner can.
	updated, err := svc.Update(context.Background(), models.KindExpense,
		Requester{UserID: "usr-001", Role: models.RoleUser},
		UpdateTransactionCommand{TransactionID: tx.ID, Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, newAmount, updated.Amount)

	// So can an admin.
	desc := "team lunch"
	updated, err = svc.Update(context.Background(), models.KindExpense,
		Requester{UserID: "usr-admin", Role: models.RoleAdmin},
		UpdateTransactionCommand{TransactionID: tx.ID, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "team lunch", updated.Description)
	assert.Equal(t, newAmount, updated.Amount, "unsupplied fields keep their values")
}

func TestDeleteTransaction(t *testing.T) {
	store := newFakeTransactionStore()
	svc, inv, pub := newTransactionService(store)

	tx, err := svc.Create(context.Background(), models.KindExpense, CreateTransactionCommand{
		UserID:     "usr-001",
		Amount:     2500,
		CategoryID: "cat-food",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), models.KindExpense,
		Requester{UserID: "usr-002", Role: models.RoleUser}, tx.ID)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	err = svc.Delete(context.Background(), models.KindExpense,
		Requester{UserID: "usr-001", Role: models.RoleUser}, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, store.rows)
	assert.Contains(t, pub.events, "transaction.deleted")

	err = svc.Delete(context.Background(), models.KindExpense,
		Requester{UserID: "usr-001", Role: models.RoleUser}, tx.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	// Create plus delete each drop the cached summary.
	assert.Equal(t, []string{"usr-001", "usr-001"}, inv.invalidated)
}

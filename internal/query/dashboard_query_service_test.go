package query

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
	"github.com/spendwise/api/internal/repository"
)

// ---- mock implementations ----

type mockAggregator struct {
	sumFn        func(kind models.TransactionKind, userID string) (money.Cents, error)
	sumBetweenFn func(kind models.TransactionKind, userID string, from, to time.Time) (money.Cents, error)
	countAllFn   func(kind models.TransactionKind) (int, error)
	countSinceFn func(kind models.TransactionKind, t time.Time) (int, error)
	rowsFn       func(userID string, window repository.Window) ([]repository.CategoryRow, error)
	datesFn      func(kind models.TransactionKind, window repository.Window) ([]time.Time, error)
}

func (m *mockAggregator) SumCentsByUser(kind models.TransactionKind, userID string) (money.Cents, error) {
	if m.sumFn != nil {
		return m.sumFn(kind, userID)
	}
	return 0, nil
}
func (m *mockAggregator) SumCentsByUserBetween(kind models.TransactionKind, userID string, from, to time.Time) (money.Cents, error) {
	if m.sumBetweenFn != nil {
		return m.sumBetweenFn(kind, userID, from, to)
	}
	return 0, nil
}
func (m *mockAggregator) CountAll(kind models.TransactionKind) (int, error) {
	if m.countAllFn != nil {
		return m.countAllFn(kind)
	}
	return 0, nil
}
func (m *mockAggregator) CountSince(kind models.TransactionKind, t time.Time) (int, error) {
	if m.countSinceFn != nil {
		return m.countSinceFn(kind, t)
	}
	return 0, nil
}
func (m *mockAggregator) ExpenseRowsByUser(userID string, window repository.Window) ([]repository.CategoryRow, error) {
	if m.rowsFn != nil {
		return m.rowsFn(userID, window)
	}
	return nil, nil
}
func (m *mockAggregator) DatesBetween(kind models.TransactionKind, window repository.Window) ([]time.Time, error) {
	if m.datesFn != nil {
		return m.datesFn(kind, window)
	}
	return nil, nil
}

type mockCounter struct {
	byRoleFn func(role string) (int, error)
	sinceFn  func(t time.Time) (int, error)
}

func (m *mockCounter) CountByRole(role string) (int, error) {
	if m.byRoleFn != nil {
		return m.byRoleFn(role)
	}
	return 0, nil
}
func (m *mockCounter) CountCreatedSince(t time.Time) (int, error) {
	if m.sinceFn != nil {
		return m.sinceFn(t)
	}
	return 0, nil
}

type mockCache struct {
	entries map[string]*models.DashboardSummary
	sets    int
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*models.DashboardSummary)}
}
func (m *mockCache) Get(_ context.Context, key string) (*models.DashboardSummary, bool) {
	v, ok := m.entries[key]
	return v, ok
}
func (m *mockCache) Set(_ context.Context, key string, value *models.DashboardSummary) {
	m.entries[key] = value
	m.sets++
}
func (m *mockCache) Delete(_ context.Context, key string) {
	delete(m.entries, key)
	m.deletes = append(m.deletes, key)
}

func fixedNow() time.Time {
	return time.Date(2024, time.April, 15, 10, 30, 0, 0, time.UTC)
}

func newTestService(agg *mockAggregator, counter *mockCounter, cache *mockCache) *DashboardQueryService {
	svc := NewDashboardQueryService(agg, counter, cache)
	svc.now = fixedNow
	return svc
}

func namedRow(name string, cents int64) repository.CategoryRow {
	return repository.CategoryRow{
		CategoryName: sql.NullString{String: name, Valid: name != ""},
		AmountCents:  cents,
	}
}

// ---- tests ----

func TestUserSummary(t *testing.T) {
	agg := &mockAggregator{
		sumFn: func(kind models.TransactionKind, userID string) (money.Cents, error) {
			if kind == models.KindIncome {
				return 500000, nil
			}
			return 120000, nil
		},
		sumBetweenFn: func(kind models.TransactionKind, userID string, from, to time.Time) (money.Cents, error) {
			assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), from)
			return 30000, nil
		},
	}
	cache := newMockCache()
	svc := newTestService(agg, &mockCounter{}, cache)

	summary, err := svc.UserSummary(context.Background(), "usr-001")
	require.NoError(t, err)

	assert.Equal(t, money.Cents(500000), summary.TotalIncome)
	assert.Equal(t, money.Cents(120000), summary.TotalExpenses)
	assert.Equal(t, money.Cents(380000), summary.TotalSavings)
	assert.Equal(t, money.Cents(30000), summary.ThisMonthExpenses)
	assert.Equal(t, 1, cache.sets, "summary should be cached after computation")
}

func TestUserSummaryServedFromCache(t *testing.T) {
	agg := &mockAggregator{
		sumFn: func(models.TransactionKind, string) (money.Cents, error) {
			return 0, fmt.Errorf("store should not be hit when the summary is cached")
		},
	}
	cache := newMockCache()
	cached := &models.DashboardSummary{TotalIncome: 100}
	cache.entries["dashboard:summary:usr-001"] = cached
	svc := newTestService(agg, &mockCounter{}, cache)

	summary, err := svc.UserSummary(context.Background(), "usr-001")
	require.NoError(t, err)
	assert.Same(t, cached, summary)
}

func TestUserSummaryStoreError(t *testing.T) {
	agg := &mockAggregator{
		sumFn: func(models.TransactionKind, string) (money.Cents, error) {
			return 0, fmt.Errorf("connection reset")
		},
	}
	svc := newTestService(agg, &mockCounter{}, newMockCache())

	_, err := svc.UserSummary(context.Background(), "usr-001")
	assert.Error(t, err)
}

func TestInvalidateSummary(t *testing.T) {
	cache := newMockCache()
	cache.entries["dashboard:summary:usr-001"] = &models.DashboardSummary{}
	svc := newTestService(&mockAggregator{}, &mockCounter{}, cache)

	svc.InvalidateSummary(context.Background(), "usr-001")
	assert.Empty(t, cache.entries)
	assert.Equal(t, []string{"dashboard:summary:usr-001"}, cache.deletes)
}

func TestAdminSummary(t *testing.T) {
	agg := &mockAggregator{
		countAllFn: func(kind models.TransactionKind) (int, error) {
			if kind == models.KindIncome {
				return 40, nil
			}
			return 60, nil
		},
		countSinceFn: func(kind models.TransactionKind, since time.Time) (int, error) {
			assert.Equal(t, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC), since)
			if kind == models.KindIncome {
				return 2, nil
			}
			return 3, nil
		},
	}
	counter := &mockCounter{
		byRoleFn: func(role string) (int, error) {
			assert.Equal(t, models.RoleUser, role)
			return 12, nil
		},
		sinceFn: func(time.Time) (int, error) { return 4, nil },
	}
	svc := newTestService(agg, counter, newMockCache())

	summary, err := svc.AdminSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, summary.TotalUsers)
	assert.Equal(t, 100, summary.TotalTransactions)
	assert.Equal(t, 5, summary.TodaysTransactions)
	assert.Equal(t, 4, summary.TodaysJoinUser)
}

func TestCategoryWiseExpense(t *testing.T) {
	agg := &mockAggregator{
		rowsFn: func(userID string, window repository.Window) ([]repository.CategoryRow, error) {
			return []repository.CategoryRow{
				namedRow("Groceries", 1000),
				namedRow("Rent", 50000),
				namedRow("", 750),
				namedRow("Groceries", 2500),
			}, nil
		},
	}
	svc := newTestService(agg, &mockCounter{}, newMockCache())

	rows, err := svc.CategoryWiseExpense(context.Background(), "usr-001", "", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// First-seen order, amounts accumulated per group.
	assert.Equal(t, "Groceries", rows[0].Category)
	assert.Equal(t, money.Cents(3500), rows[0].Amount)
	assert.Equal(t, "Rent", rows[1].Category)
	assert.Equal(t, money.Cents(50000), rows[1].Amount)
	assert.Equal(t, "Uncategorized", rows[2].Category)
	assert.Equal(t, money.Cents(750), rows[2].Amount)

	// Colors follow first-seen position in the palette.
	assert.Equal(t, chartPalette[0], rows[0].Fill)
	assert.Equal(t, chartPalette[1], rows[1].Fill)
	assert.Equal(t, chartPalette[2], rows[2].Fill)
}

func TestCategoryWiseExpensePaletteWraps(t *testing.T) {
	agg := &mockAggregator{
		rowsFn: func(string, repository.Window) ([]repository.CategoryRow, error) {
			rows := make([]repository.CategoryRow, 0, 14)
			for i := 0; i < 14; i++ {
				rows = append(rows, namedRow(fmt.Sprintf("cat-%02d", i), 100))
			}
			return rows, nil
		},
	}
	svc := newTestService(agg, &mockCounter{}, newMockCache())

	rows, err := svc.CategoryWiseExpense(context.Background(), "usr-001", "", "")
	require.NoError(t, err)
	require.Len(t, rows, 14)
	assert.Equal(t, chartPalette[0], rows[12].Fill)
	assert.Equal(t, chartPalette[1], rows[13].Fill)
}

func TestAdminTransactionsTrend(t *testing.T) {
	agg := &mockAggregator{
		datesFn: func(kind models.TransactionKind, window repository.Window) ([]time.Time, error) {
			if kind == models.KindIncome {
				return []time.Time{
					time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
					time.Date(2024, time.April, 1, 17, 0, 0, 0, time.UTC),
				}, nil
			}
			return []time.Time{
				time.Date(2024, time.April, 30, 12, 0, 0, 0, time.UTC),
				// Outside the seeded window: must not create a 31st entry.
				time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	svc := newTestService(agg, &mockCounter{}, newMockCache())

	trend, err := svc.AdminTransactionsTrend(context.Background(), "4", "2024")
	require.NoError(t, err)
	require.Len(t, trend, 30, "April yields one point per calendar day")

	assert.Equal(t, "2024-04-01", trend[0].Date)
	assert.Equal(t, 2, trend[0].Transactions)
	assert.Equal(t, "2024-04-02", trend[1].Date)
	assert.Equal(t, 0, trend[1].Transactions)
	assert.Equal(t, "2024-04-30", trend[29].Date)
	assert.Equal(t, 1, trend[29].Transactions)
}

func TestAdminTransactionsTrendDefaultsToCurrentMonth(t *testing.T) {
	var captured repository.Window
	agg := &mockAggregator{
		datesFn: func(kind models.TransactionKind, window repository.Window) ([]time.Time, error) {
			captured = window
			return nil, nil
		},
	}
	svc := newTestService(agg, &mockCounter{}, newMockCache())

	trend, err := svc.AdminTransactionsTrend(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, trend, 30)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), captured.From)
}

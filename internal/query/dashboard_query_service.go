package query

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/money"
	"github.com/spendwise/api/internal/repository"
)

// chartPalette is the fixed chart color cycle. Groups are colored by their
// first-seen position, wrapping when there are more than twelve categories.
var chartPalette = []string{
	"#63f5ffff",
	"#36A2EB",
	"#FFCE56",
	"#4BC0C0",
	"#FF9F40",
	"#8AC926",
	"#1982C4",
	"#6A4C93",
	"#00BBF9",
	"#00F5D4",
	"#FEE440",
	"#F3722C",
}

const uncategorized = "Uncategorized"

const summaryKeyPrefix = "dashboard:summary:"

// TransactionAggregator is the read-side slice of the transaction repository
// the dashboard needs.
type TransactionAggregator interface {
	SumCentsByUser(kind models.TransactionKind, userID string) (money.Cents, error)
	SumCentsByUserBetween(kind models.TransactionKind, userID string, from, to time.Time) (money.Cents, error)
	CountAll(kind models.TransactionKind) (int, error)
	CountSince(kind models.TransactionKind, t time.Time) (int, error)
	ExpenseRowsByUser(userID string, window repository.Window) ([]repository.CategoryRow, error)
	DatesBetween(kind models.TransactionKind, window repository.Window) ([]time.Time, error)
}

// UserCounter provides the user counts shown on the admin dashboard.
type UserCounter interface {
	CountByRole(role string) (int, error)
	CountCreatedSince(t time.Time) (int, error)
}

// SummaryCache caches the per-user summary view.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*models.DashboardSummary, bool)
	Set(ctx context.Context, key string, value *models.DashboardSummary)
	Delete(ctx context.Context, key string)
}

// DashboardQueryService is the read-only aggregation engine behind the
// dashboard endpoints. It performs no writes; the independent reads it fans
// out carry no cross-read consistency guarantee, which is acceptable for
// human-paced dashboards.
type DashboardQueryService struct {
	transactions TransactionAggregator
	users        UserCounter
	cache        SummaryCache
	now          func() time.Time
}

func NewDashboardQueryService(transactions TransactionAggregator, users UserCounter, cache SummaryCache) *DashboardQueryService {
	return &DashboardQueryService{
		transactions: transactions,
		users:        users,
		cache:        cache,
		now:          time.Now,
	}
}

// UserSummary computes the caller's lifetime totals plus the running expense
// total for the current month. Sums are exact cents end to end.
func (s *DashboardQueryService) UserSummary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	cacheKey := summaryKeyPrefix + userID
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return cached, nil
	}

	now := s.now()
	var totalIncome, totalExpenses, thisMonth money.Cents

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalIncome, err = s.transactions.SumCentsByUser(models.KindIncome, userID)
		return err
	})
	g.Go(func() (err error) {
		totalExpenses, err = s.transactions.SumCentsByUser(models.KindExpense, userID)
		return err
	})
	g.Go(func() (err error) {
		thisMonth, err = s.transactions.SumCentsByUserBetween(models.KindExpense, userID, StartOfMonth(now), now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		TotalIncome:       totalIncome,
		TotalExpenses:     totalExpenses,
		TotalSavings:      totalIncome - totalExpenses,
		ThisMonthExpenses: thisMonth,
	}
	s.cache.Set(ctx, cacheKey, summary)
	return summary, nil
}

// InvalidateSummary drops the cached summary for userID. Called by the write
// side after every transaction mutation and by the event subscriber.
func (s *DashboardQueryService) InvalidateSummary(ctx context.Context, userID string) {
	s.cache.Delete(ctx, summaryKeyPrefix+userID)
}

// AdminSummary returns system-wide counts: total non-admin users, lifetime
// transaction count, today's transaction count and today's sign-ups.
func (s *DashboardQueryService) AdminSummary(ctx context.Context) (*models.AdminSummary, error) {
	startOfToday := StartOfDay(s.now())

	var totalUsers, incomeCount, expenseCount int
	var todayIncome, todayExpense, todayUsers int

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalUsers, err = s.users.CountByRole(models.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		incomeCount, err = s.transactions.CountAll(models.KindIncome)
		return err
	})
	g.Go(func() (err error) {
		expenseCount, err = s.transactions.CountAll(models.KindExpense)
		return err
	})
	g.Go(func() (err error) {
		todayIncome, err = s.transactions.CountSince(models.KindIncome, startOfToday)
		return err
	})
	g.Go(func() (err error) {
		todayExpense, err = s.transactions.CountSince(models.KindExpense, startOfToday)
		return err
	})
	g.Go(func() (err error) {
		todayUsers, err = s.users.CountCreatedSince(startOfToday)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AdminSummary{
		TotalUsers:         totalUsers,
		TotalTransactions:  incomeCount + expenseCount,
		TodaysTransactions: todayIncome + todayExpense,
		TodaysJoinUser:     todayUsers,
	}, nil
}

// CategoryWiseExpense groups the caller's expenses in the window by category
// name, falling back to "Uncategorized" for orphaned rows. Groups keep their
// first-seen order and are colored by cycling the palette.
func (s *DashboardQueryService) CategoryWiseExpense(ctx context.Context, userID, monthStr, yearStr string) ([]models.CategoryExpense, error) {
	window := s.resolveOrCurrent(monthStr, yearStr)

	rows, err := s.transactions.ExpenseRowsByUser(userID, window)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	result := make([]models.CategoryExpense, 0, len(rows))
	for _, row := range rows {
		name := uncategorized
		if row.CategoryName.Valid && row.CategoryName.String != "" {
			name = row.CategoryName.String
		}
		i, seen := index[name]
		if !seen {
			i = len(result)
			index[name] = i
			result = append(result, models.CategoryExpense{
				Category: name,
				Fill:     chartPalette[i%len(chartPalette)],
			})
		}
		result[i].Amount += money.Cents(row.AmountCents)
	}
	return result, nil
}

// AdminTransactionsTrend builds a dense day-by-day transaction count for the
// window: one entry per calendar day, zero-activity days included, ascending.
func (s *DashboardQueryService) AdminTransactionsTrend(ctx context.Context, monthStr, yearStr string) ([]models.TrendPoint, error) {
	window := s.resolveOrCurrent(monthStr, yearStr)

	var incomeDates, expenseDates []time.Time
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incomeDates, err = s.transactions.DatesBetween(models.KindIncome, window)
		return err
	})
	g.Go(func() (err error) {
		expenseDates, err = s.transactions.DatesBetween(models.KindExpense, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loc := window.From.Location()
	days := window.To.Day()
	counts := make(map[string]int, days)
	bucket := func(t time.Time) {
		key := t.In(loc).Format("2006-01-02")
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	// Seed every calendar day so the series has no gaps.
	for day := 1; day <= days; day++ {
		key := time.Date(window.From.Year(), window.From.Month(), day, 0, 0, 0, 0, loc).Format("2006-01-02")
		counts[key] = 0
	}
	for _, d := range incomeDates {
		bucket(d)
	}
	for _, d := range expenseDates {
		bucket(d)
	}

	trend := make([]models.TrendPoint, 0, days)
	for day := 1; day <= days; day++ {
		key := time.Date(window.From.Year(), window.From.Month(), day, 0, 0, 0, 0, loc).Format("2006-01-02")
		trend = append(trend, models.TrendPoint{Date: key, Transactions: counts[key]})
	}
	return trend, nil
}

func (s *DashboardQueryService) resolveOrCurrent(monthStr, yearStr string) repository.Window {
	if w := ResolveWindow(monthStr, yearStr, s.now()); w != nil {
		return *w
	}
	return CurrentMonthWindow(s.now())
}

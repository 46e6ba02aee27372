// Package metrics computes dashboard totals, trends and comparisons over the ledger.
package metrics

import (
	"math"
	"sort"

	"fintrack/internal/models"
)

// TrendMonths is how many of the most recent months the trends cover
const TrendMonths = 6

// Comparison kinds accepted by CalculateComparison
const (
	ComparePrevious = "previous"
	CompareYear     = "year"
)

// Service provides metric calculation functionality
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// CalculateMetrics computes dashboard metrics from a transaction set
func (s *Service) CalculateMetrics(ts *models.TransactionSet) *models.DashboardMetrics {
	income := ts.FilterByType(models.Income)
	expenses := ts.FilterByType(models.Expense)

	totalIncome := income.SumAmount()
	totalExpenses := expenses.SumAmount()
	netSavings := ts.Net()

	var savingsRate float64
	if totalIncome > 0 {
		savingsRate = (netSavings / totalIncome) * 100
	}

	monthlyIncome := income.GroupByMonth()
	monthlyExpenses := expenses.GroupByMonth()

	monthSet := make(map[string]bool)
	for m := range monthlyIncome {
		monthSet[m] = true
	}
	for m := range monthlyExpenses {
		monthSet[m] = true
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > TrendMonths {
		months = months[len(months)-TrendMonths:]
	}

	metrics := &models.DashboardMetrics{
		TotalIncome:      totalIncome,
		TotalExpenses:    totalExpenses,
		NetSavings:       netSavings,
		SavingsRate:      savingsRate,
		TransactionCount: ts.Len(),
		StartDate:        ts.MinDate(),
		EndDate:          ts.MaxDate(),
		IncomeTrend:      []float64{},
		ExpensesTrend:    []float64{},
		SavingsTrend:     []float64{},
		TrendLabels:      []string{},
	}

	for _, m := range months {
		var inc, exp float64
		if set, ok := monthlyIncome[m]; ok {
			inc = set.SumAmount()
		}
		if set, ok := monthlyExpenses[m]; ok {
			exp = set.SumAmount()
		}

		metrics.IncomeTrend = append(metrics.IncomeTrend, inc)
		metrics.ExpensesTrend = append(metrics.ExpensesTrend, exp)
		metrics.SavingsTrend = append(metrics.SavingsTrend, inc-exp)
		metrics.TrendLabels = append(metrics.TrendLabels, m)
	}

	return metrics
}

// CalculateComparison compares [start, end] with the period before it
// ("previous") or the same dates a year earlier ("year"). It returns nil
// for an unknown comparison kind.
func (s *Service) CalculateComparison(data *models.TransactionSet, start, end models.Date, kind string) *models.PeriodComparison {
	var compStart, compEnd models.Date

	switch kind {
	case ComparePrevious:
		days := int(end.Sub(start.Time).Hours() / 24)
		compEnd = start.AddDate(0, 0, -1)
		compStart = compEnd.AddDate(0, 0, -days)
	case CompareYear:
		compStart = start.AddDate(-1, 0, 0)
		compEnd = end.AddDate(-1, 0, 0)
	default:
		return nil
	}

	current := data.FilterByDateRange(start, end)
	previous := data.FilterByDateRange(compStart, compEnd)

	if previous.Len() == 0 {
		return &models.PeriodComparison{HasData: false}
	}

	cur := s.CalculateMetrics(current)
	prev := s.CalculateMetrics(previous)

	return &models.PeriodComparison{
		Current:           cur,
		Previous:          prev,
		HasData:           true,
		IncomeChange:      s.PercentChange(cur.TotalIncome, prev.TotalIncome),
		ExpensesChange:    s.PercentChange(cur.TotalExpenses, prev.TotalExpenses),
		SavingsChange:     s.PercentChange(cur.NetSavings, prev.NetSavings),
		SavingsRateChange: cur.SavingsRate - prev.SavingsRate,
	}
}

// PercentChange calculates the percentage change between two values
func (s *Service) PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / math.Abs(previous)) * 100
}

// CategoryBreakdown summarises expenses by category, largest first
func (s *Service) CategoryBreakdown(ts *models.TransactionSet) []models.CategorySummary {
	expenses := ts.FilterByType(models.Expense)
	total := expenses.SumAmount()

	groups := expenses.GroupByCategory()
	summaries := []models.CategorySummary{}
	for cat, amount := range expenses.CategoryTotals() {
		var pct float64
		if total > 0 {
			pct = amount / total * 100
		}
		summaries = append(summaries, models.CategorySummary{
			Category:   cat,
			Amount:     amount,
			Count:      groups[cat].Len(),
			Percentage: pct,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Amount != summaries[j].Amount {
			return summaries[i].Amount > summaries[j].Amount
		}
		return summaries[i].Category < summaries[j].Category
	})
	return summaries
}

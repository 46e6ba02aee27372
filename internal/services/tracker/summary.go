package tracker

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/loans"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/recurring"
	"fintrack/internal/services/savings"
)

// UpcomingDays is how far ahead the summary lists scheduled bills
const UpcomingDays = 30

// Summary builds the dashboard overview as of today
func (t *Tracker) Summary() (*models.Summary, error) {
	txns, err := t.repo.Transactions()
	if err != nil {
		return nil, err
	}
	goals, err := t.repo.Goals()
	if err != nil {
		return nil, err
	}
	allLoans, err := t.repo.Loans()
	if err != nil {
		return nil, err
	}
	scheduled, err := t.repo.Scheduled()
	if err != nil {
		return nil, err
	}

	today := t.Today()
	set := models.NewTransactionSet(txns)
	summary := &models.Summary{
		Metrics:        t.metrics.CalculateMetrics(set),
		Categories:     t.metrics.CategoryBreakdown(set),
		Goals:          make([]models.GoalStatus, 0, len(goals)),
		UpcomingBills:  []models.UpcomingItem{},
		ScheduledCount: len(scheduled),
	}

	for _, g := range goals {
		p := savings.Project(g, today)
		summary.Goals = append(summary.Goals, models.GoalStatus{
			ID:           g.ID,
			Name:         g.Name,
			TargetAmount: g.TargetAmount,
			CurrentValue: p.CurrentValue,
			FutureValue:  p.FutureValue,
			Progress:     p.Progress,
			Deadline:     g.Deadline,
		})
	}

	for _, l := range allLoans {
		switch l.Type {
		case models.LoanLent:
			summary.LentOut += l.OutstandingAmount
		case models.LoanBorrowed:
			summary.Owed += l.OutstandingAmount
			if !l.IsSettled() {
				summary.MonthlyEMI += loans.MonthlyPayment(l).MonthlyPayment
			}
		}
	}

	until := today.AddDate(0, 0, UpcomingDays)
	for _, st := range scheduled {
		for _, d := range recurring.Upcoming(st, until) {
			summary.UpcomingBills = append(summary.UpcomingBills, models.UpcomingItem{
				ID:     st.ID,
				Name:   st.Name,
				Amount: st.Amount,
				Type:   st.Type,
				Date:   d,
			})
		}
	}
	sort.SliceStable(summary.UpcomingBills, func(i, j int) bool {
		return summary.UpcomingBills[i].Date.Before(summary.UpcomingBills[j].Date)
	})

	return summary, nil
}

// Comparison compares the ledger over [start, end] with the previous period
// or the same dates a year earlier
func (t *Tracker) Comparison(start, end models.Date, kind string) (*models.PeriodComparison, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("period end %s is before start %s", end, start)
	}
	txns, err := t.repo.Transactions()
	if err != nil {
		return nil, err
	}
	cmp := t.metrics.CalculateComparison(models.NewTransactionSet(txns), start, end, kind)
	if cmp == nil {
		return nil, fmt.Errorf("unknown comparison %q (want %s or %s)", kind, metrics.ComparePrevious, metrics.CompareYear)
	}
	return cmp, nil
}

// Preferences returns the user's display settings
func (t *Tracker) Preferences() (models.Preferences, error) {
	return t.repo.Preferences()
}

// SetPreferences validates and stores the user's display settings
func (t *Tracker) SetPreferences(prefs models.Preferences) error {
	f := prefs.Currency
	if f.Decimals < 0 || f.Decimals > currency.MaxDecimals {
		return fmt.Errorf("currency decimals must be between 0 and %d", currency.MaxDecimals)
	}
	switch f.Placement {
	case models.SymbolBefore, models.SymbolAfter:
	default:
		return fmt.Errorf("unknown symbol placement %q", f.Placement)
	}
	switch f.Grouping {
	case models.GroupingStandard, models.GroupingIndian, models.GroupingNone:
	default:
		return fmt.Errorf("unknown grouping %q", f.Grouping)
	}

	if err := t.repo.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	t.entry(logrus.Fields{"currency": f.Code}).Info("Preferences updated")
	return nil
}

// Format renders amount in the user's currency format, falling back to
// the defaults when preferences cannot be read
func (t *Tracker) Format(amount float64) string {
	prefs, err := t.repo.Preferences()
	if err != nil {
		t.entry(nil).WithError(err).Warn("Failed to load preferences")
		prefs = models.DefaultPreferences()
	}
	return currency.Format(amount, prefs.Currency)
}

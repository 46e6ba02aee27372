package models

// DashboardMetrics contains the main KPI metrics for the dashboard
type DashboardMetrics struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	NetSavings       float64 `json:"net_savings"`
	SavingsRate      float64 `json:"savings_rate"`
	TransactionCount int     `json:"transaction_count"`
	StartDate        Date    `json:"start_date"`
	EndDate          Date    `json:"end_date"`

	// Trends - monthly values
	IncomeTrend   []float64 `json:"income_trend"`
	ExpensesTrend []float64 `json:"expenses_trend"`
	SavingsTrend  []float64 `json:"savings_trend"`
	TrendLabels   []string  `json:"trend_labels"` // Month labels
}

// PeriodComparison holds metrics for two periods for comparison
type PeriodComparison struct {
	Current  *DashboardMetrics `json:"current"`
	Previous *DashboardMetrics `json:"previous"`
	HasData  bool              `json:"has_data"`

	// Percentage changes
	IncomeChange      float64 `json:"income_change_pct"`
	ExpensesChange    float64 `json:"expenses_change_pct"`
	SavingsChange     float64 `json:"savings_change_pct"`
	SavingsRateChange float64 `json:"savings_rate_change_pp"` // percentage points
}

// CategorySummary represents spending in a category
type CategorySummary struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary is the whole-portfolio overview shown by the dashboard and given
// to the assistant as context
type Summary struct {
	Metrics        *DashboardMetrics `json:"metrics"`
	Categories     []CategorySummary `json:"categories"`
	Goals          []GoalStatus      `json:"goals"`
	LentOut        float64           `json:"lent_out"`       // Outstanding on loans the user gave
	Owed           float64           `json:"owed"`           // Outstanding on loans the user took
	MonthlyEMI     float64           `json:"monthly_emi"`    // Sum of EMIs on borrowed monthly loans
	UpcomingBills  []UpcomingItem    `json:"upcoming_bills"` // Scheduled items due in the next 30 days
	ScheduledCount int               `json:"scheduled_count"`
}

// GoalStatus is a savings goal with its progress
type GoalStatus struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	CurrentValue float64 `json:"current_value"`
	FutureValue  float64 `json:"future_value"`
	Progress     float64 `json:"progress"`
	Deadline     Date    `json:"deadline"`
}

// UpcomingItem is a scheduled transaction occurrence in the near future
type UpcomingItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount float64         `json:"amount"`
	Type   TransactionType `json:"type"`
	Date   Date            `json:"date"`
}

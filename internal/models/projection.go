package models

// ProjectionPoint is the balance at the start of a projected month
type ProjectionPoint struct {
	Month   Date    `json:"month"` // First day of the month
	Balance float64 `json:"balance"`
}

// Milestone is the first projected month reaching a share of the target
type Milestone struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
	Reached bool    `json:"reached"`
	Month   Date    `json:"month,omitempty"`
}

// SavingsProjection contains the projected balance series and summary values
type SavingsProjection struct {
	Points       []ProjectionPoint `json:"points"`
	FutureValue  float64           `json:"future_value"`
	CurrentValue float64           `json:"current_value"`
	Progress     float64           `json:"progress"` // 0-100
	Milestones   []Milestone       `json:"milestones"`
	OnTrack      bool              `json:"on_track"`
}

// LoanPayment is the EMI breakdown for a loan.
// The zero value means no EMI applies.
type LoanPayment struct {
	Months         int     `json:"months"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// AmortizationRow is one month of a repayment schedule
type AmortizationRow struct {
	Number    int     `json:"number"`
	Date      Date    `json:"date"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

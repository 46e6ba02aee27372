// Package loans computes EMIs, repayment schedules and repayments for
// personal loans.
package loans

import (
	"math"

	"fintrack/internal/models"
	"fintrack/internal/services/calendar"
)

// MonthlyPayment computes the EMI breakdown for a loan on a monthly
// repayment schedule. Loans that are not monthly, have no whole months
// between the loan date and the due date, or carry an invalid principal
// get the zero LoanPayment.
func MonthlyPayment(loan models.Loan) models.LoanPayment {
	if loan.RepaymentSchedule != models.RepaymentMonthly {
		return models.LoanPayment{}
	}
	months := calendar.MonthsBetween(loan.Date, loan.DueDate)
	p := loan.TotalAmount
	if months <= 0 || !positive(p) {
		return models.LoanPayment{}
	}

	var monthly float64
	switch {
	case !positive(loan.InterestRate):
		monthly = p / float64(months)
	case loan.InterestType == models.InterestSimple:
		years := float64(months) / 12
		interest := p * (loan.InterestRate / 100) * years
		monthly = (p + interest) / float64(months)
	case loan.InterestType == models.InterestCompound:
		monthly = EMI(p, loan.InterestRate, months)
	default:
		return models.LoanPayment{}
	}

	total := monthly * float64(months)
	return models.LoanPayment{
		Months:         months,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - p,
	}
}

// EMI is the standard equated monthly installment for principal p at an
// annual rate in percent over months. It returns 0 for invalid input.
func EMI(p, ratePct float64, months int) float64 {
	if !positive(p) || !positive(ratePct) || months <= 0 {
		return 0
	}
	r := ratePct / 100 / 12
	growth := math.Pow(1+r, float64(months))
	return p * r * growth / (growth - 1)
}

// Calculate is the standalone loan calculator: amount, annual rate in
// percent and term in years, always compounding monthly. It reports false
// unless all three are positive.
func Calculate(amount, ratePct, termYears float64) (models.LoanPayment, bool) {
	if !positive(amount) || !positive(ratePct) || !positive(termYears) {
		return models.LoanPayment{}, false
	}
	months := int(math.Round(termYears * 12))
	if months <= 0 {
		return models.LoanPayment{}, false
	}

	monthly := EMI(amount, ratePct, months)
	total := monthly * float64(months)
	return models.LoanPayment{
		Months:         months,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - amount,
	}, true
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

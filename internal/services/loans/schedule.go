package loans

import (
	"math"

	"fintrack/internal/models"
	"fintrack/internal/services/calendar"
)

// Amortize builds the month-by-month repayment schedule behind
// MonthlyPayment. Compound loans split each payment into interest on the
// remaining balance and principal; simple and zero-rate loans spread the
// interest evenly. The last row takes whatever balance is left so rounding
// never leaves a residue.
func Amortize(loan models.Loan) []models.AmortizationRow {
	payment := MonthlyPayment(loan)
	if payment.Months == 0 {
		return []models.AmortizationRow{}
	}

	rows := make([]models.AmortizationRow, 0, payment.Months)
	balance := loan.TotalAmount
	monthlyRate := loan.InterestRate / 100 / 12
	compound := loan.InterestType == models.InterestCompound && positive(loan.InterestRate)
	flatInterest := payment.TotalInterest / float64(payment.Months)

	for i := 1; i <= payment.Months; i++ {
		interest := flatInterest
		if compound {
			interest = balance * monthlyRate
		}
		principal := payment.MonthlyPayment - interest
		amount := payment.MonthlyPayment
		if i == payment.Months {
			principal = balance
			amount = principal + interest
		}
		balance -= principal

		rows = append(rows, models.AmortizationRow{
			Number:    i,
			Date:      calendar.AddMonthsClamped(loan.Date, i),
			Payment:   round2(amount),
			Principal: round2(principal),
			Interest:  round2(interest),
			Balance:   round2(math.Max(0, balance)),
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package loans

import (
	"fmt"
	"math"
	"slices"

	"fintrack/internal/models"
)

// LedgerCategory is the ledger category used for loan repayments
const LedgerCategory = "Loans"

// ApplyRepayment returns a copy of loan with r recorded. The outstanding
// amount drops by r.Amount but never below zero, and r goes to the front of
// the repayment history. A non-positive or invalid amount leaves the loan
// unchanged and reports false.
func ApplyRepayment(loan models.Loan, r models.Repayment) (models.Loan, bool) {
	if !positive(r.Amount) {
		return loan, false
	}

	next := loan
	next.OutstandingAmount = math.Max(0, loan.OutstandingAmount-r.Amount)
	next.Repayments = make([]models.Repayment, 0, len(loan.Repayments)+1)
	next.Repayments = append(next.Repayments, r)
	next.Repayments = append(next.Repayments, loan.Repayments...)
	return next, true
}

// Recalculate returns a copy of loan whose outstanding amount is derived
// from the total and the recorded repayments
func Recalculate(loan models.Loan) models.Loan {
	next := loan
	next.Repayments = slices.Clone(loan.Repayments)
	next.OutstandingAmount = loan.ExpectedOutstanding()
	return next
}

// RepaymentEntry describes r as a ledger entry. Paying back a borrowed loan
// is an expense; being paid back on a lent loan is income.
func RepaymentEntry(loan models.Loan, r models.Repayment) models.Transaction {
	entry := models.Transaction{
		Date:     r.Date,
		Amount:   r.Amount,
		Category: LedgerCategory,
		Source:   models.SourceLoan,
		SourceID: loan.ID,
	}
	if loan.Type == models.LoanBorrowed {
		entry.Type = models.Expense
		entry.Description = fmt.Sprintf("Loan repayment to %s", loan.Person)
	} else {
		entry.Type = models.Income
		entry.Description = fmt.Sprintf("Loan repayment from %s", loan.Person)
	}
	entry.Hash = entry.ComputeHash()
	return entry
}

package tracker

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/loans"
)

func loanID(l models.Loan) string { return l.ID }

// Loans returns every loan
func (t *Tracker) Loans() ([]models.Loan, error) {
	return t.repo.Loans()
}

// Loan returns the loan with id
func (t *Tracker) Loan(id string) (models.Loan, error) {
	all, err := t.repo.Loans()
	if err != nil {
		return models.Loan{}, err
	}
	i := indexOf(all, id, loanID)
	if i < 0 {
		return models.Loan{}, notFound("loan", id)
	}
	return all[i], nil
}

// AddLoan stores a new loan. Its outstanding amount is derived from the
// total and any repayments it already carries.
func (t *Tracker) AddLoan(loan models.Loan) (models.Loan, error) {
	loan.ID = newID()
	if loan.Date.IsZero() {
		loan.Date = t.Today()
	}
	if loan.InterestType == "" {
		loan.InterestType = models.InterestSimple
	}
	if loan.RepaymentSchedule == "" {
		loan.RepaymentSchedule = models.RepaymentOneTime
	}
	loan = loans.Recalculate(loan)
	if loan.Repayments == nil {
		loan.Repayments = []models.Repayment{}
	}
	if err := loan.Validate(); err != nil {
		return models.Loan{}, err
	}

	err := t.repo.UpdateLoans(func(all []models.Loan) ([]models.Loan, error) {
		return append(all, loan), nil
	})
	if err != nil {
		return models.Loan{}, fmt.Errorf("failed to save loan: %w", err)
	}

	t.entry(logrus.Fields{"loan_id": loan.ID, "type": loan.Type, "amount": loan.TotalAmount}).Info("Loan added")
	return loan, nil
}

// UpdateLoan applies patch to the loan with id
func (t *Tracker) UpdateLoan(id string, patch models.LoanPatch) (models.Loan, error) {
	var updated models.Loan
	err := t.repo.UpdateLoans(func(all []models.Loan) ([]models.Loan, error) {
		i := indexOf(all, id, loanID)
		if i < 0 {
			return nil, notFound("loan", id)
		}
		next := all[i].Apply(patch)
		if err := next.Validate(); err != nil {
			return nil, err
		}
		all[i] = next
		updated = next
		return all, nil
	})
	if err != nil {
		return models.Loan{}, err
	}

	t.entry(logrus.Fields{"loan_id": id}).Info("Loan updated")
	return updated, nil
}

// DeleteLoan removes the loan with id. Ledger entries of past repayments stay.
func (t *Tracker) DeleteLoan(id string) error {
	err := t.repo.UpdateLoans(func(all []models.Loan) ([]models.Loan, error) {
		i := indexOf(all, id, loanID)
		if i < 0 {
			return nil, notFound("loan", id)
		}
		return slices.Delete(all, i, i+1), nil
	})
	if err != nil {
		return err
	}

	t.entry(logrus.Fields{"loan_id": id}).Info("Loan deleted")
	return nil
}

// RepayLoan records a repayment on the loan and appends the matching
// ledger entry. A zero date means today.
func (t *Tracker) RepayLoan(id string, amount float64, date models.Date) (models.Loan, error) {
	if date.IsZero() {
		date = t.Today()
	}
	repayment := models.Repayment{ID: newID(), Amount: amount, Date: date}

	var updated models.Loan
	err := t.repo.UpdateLoans(func(all []models.Loan) ([]models.Loan, error) {
		i := indexOf(all, id, loanID)
		if i < 0 {
			return nil, notFound("loan", id)
		}
		next, ok := loans.ApplyRepayment(all[i], repayment)
		if !ok {
			return nil, fmt.Errorf("repayment amount must be > 0")
		}
		all[i] = next
		updated = next
		return all, nil
	})
	if err != nil {
		return models.Loan{}, err
	}

	entry := loans.RepaymentEntry(updated, repayment)
	if _, err := t.appendTransactions(entry); err != nil {
		return updated, fmt.Errorf("repayment saved but the ledger was not saved, re-add %s: %w",
			describeEntries([]models.Transaction{entry}), err)
	}

	t.entry(logrus.Fields{
		"loan_id":     id,
		"amount":      amount,
		"outstanding": updated.OutstandingAmount,
	}).Info("Loan repayment recorded")
	return updated, nil
}

// LoanPayment returns the EMI breakdown of the loan with id
func (t *Tracker) LoanPayment(id string) (models.LoanPayment, error) {
	loan, err := t.Loan(id)
	if err != nil {
		return models.LoanPayment{}, err
	}
	return loans.MonthlyPayment(loan), nil
}

// Amortization returns the repayment schedule of the loan with id
func (t *Tracker) Amortization(id string) ([]models.AmortizationRow, error) {
	loan, err := t.Loan(id)
	if err != nil {
		return nil, err
	}
	return loans.Amortize(loan), nil
}

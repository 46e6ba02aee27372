package models

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// LoanType says which side of the loan the user is on
type LoanType string

const (
	LoanLent     LoanType = "lent"
	LoanBorrowed LoanType = "borrowed"
)

// InterestType selects the EMI formula
type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

// RepaymentSchedule is how a loan is paid back
type RepaymentSchedule string

const (
	RepaymentOneTime RepaymentSchedule = "one-time"
	RepaymentMonthly RepaymentSchedule = "monthly"
)

// Repayment is a single payment against a loan
type Repayment struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Date   Date    `json:"date"`
}

// Loan is money lent to or borrowed from a person.
// Repayments are kept newest first, in the order they were recorded.
type Loan struct {
	ID                string            `json:"id"`
	Type              LoanType          `json:"type"`
	Person            string            `json:"person"`
	TotalAmount       float64           `json:"total_amount"`
	OutstandingAmount float64           `json:"outstanding_amount"`
	InterestRate      float64           `json:"interest_rate"` // Annual, e.g. 10 for 10%
	InterestType      InterestType      `json:"interest_type"`
	Date              Date              `json:"date"`
	DueDate           Date              `json:"due_date"`
	RepaymentSchedule RepaymentSchedule `json:"repayment_schedule"`
	Repayments        []Repayment       `json:"repayments"`
	Notes             string            `json:"notes,omitempty"`
}

// Validate checks the invariants a loan must hold when it is stored
func (l Loan) Validate() error {
	if strings.TrimSpace(l.Person) == "" {
		return fmt.Errorf("loan person is required")
	}
	if l.Type != LoanLent && l.Type != LoanBorrowed {
		return fmt.Errorf("loan with %s: unknown type %q", l.Person, l.Type)
	}
	if math.IsNaN(l.TotalAmount) || l.TotalAmount < 0 {
		return fmt.Errorf("loan with %s: total amount must be >= 0", l.Person)
	}
	if l.InterestType != InterestSimple && l.InterestType != InterestCompound {
		return fmt.Errorf("loan with %s: unknown interest type %q", l.Person, l.InterestType)
	}
	if l.RepaymentSchedule != RepaymentOneTime && l.RepaymentSchedule != RepaymentMonthly {
		return fmt.Errorf("loan with %s: unknown repayment schedule %q", l.Person, l.RepaymentSchedule)
	}
	if l.Date.IsZero() || l.DueDate.IsZero() {
		return fmt.Errorf("loan with %s: date and due date are required", l.Person)
	}
	return nil
}

// RepaidAmount is the sum of all repayments
func (l Loan) RepaidAmount() float64 {
	var sum float64
	for _, r := range l.Repayments {
		sum += r.Amount
	}
	return sum
}

// ExpectedOutstanding is total minus repayments, floored at zero
func (l Loan) ExpectedOutstanding() float64 {
	return math.Max(0, l.TotalAmount-l.RepaidAmount())
}

// IsSettled reports whether nothing is left to repay
func (l Loan) IsSettled() bool {
	return l.OutstandingAmount <= 0
}

// LoanPatch holds the fields of an update; nil fields are left unchanged
type LoanPatch struct {
	Person            *string            `json:"person,omitempty"`
	TotalAmount       *float64           `json:"total_amount,omitempty"`
	InterestRate      *float64           `json:"interest_rate,omitempty"`
	InterestType      *InterestType      `json:"interest_type,omitempty"`
	Date              *Date              `json:"date,omitempty"`
	DueDate           *Date              `json:"due_date,omitempty"`
	RepaymentSchedule *RepaymentSchedule `json:"repayment_schedule,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
}

// Apply returns a copy of l with the patch applied.
// Changing the total amount recomputes the outstanding amount.
func (l Loan) Apply(p LoanPatch) Loan {
	next := l
	next.Repayments = slices.Clone(l.Repayments)
	if p.Person != nil {
		next.Person = *p.Person
	}
	if p.TotalAmount != nil {
		next.TotalAmount = *p.TotalAmount
		next.OutstandingAmount = next.ExpectedOutstanding()
	}
	if p.InterestRate != nil {
		next.InterestRate = *p.InterestRate
	}
	if p.InterestType != nil {
		next.InterestType = *p.InterestType
	}
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.DueDate != nil {
		next.DueDate = *p.DueDate
	}
	if p.RepaymentSchedule != nil {
		next.RepaymentSchedule = *p.RepaymentSchedule
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	return next
}

package models

import (
	"fmt"
	"math"
	"strings"
)

// Frequency is how often a scheduled transaction recurs
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// ScheduledTransaction is a template for a recurring income or expense.
// There is no expired state: an item whose next date would pass EndDate is deleted.
type ScheduledTransaction struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   Date            `json:"start_date"`
	EndDate     *Date           `json:"end_date,omitempty"`
	NextDueDate Date            `json:"next_due_date"`
	Notes       string          `json:"notes,omitempty"`
}

// Validate checks the invariants a scheduled transaction must hold when it is stored
func (s ScheduledTransaction) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scheduled transaction name is required")
	}
	if math.IsNaN(s.Amount) || s.Amount <= 0 {
		return fmt.Errorf("scheduled transaction %q: amount must be > 0", s.Name)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("scheduled transaction %q: unknown type %q", s.Name, s.Type)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("scheduled transaction %q: unknown frequency %q", s.Name, s.Frequency)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("scheduled transaction %q: start date is required", s.Name)
	}
	if s.NextDueDate.Before(s.StartDate) {
		return fmt.Errorf("scheduled transaction %q: next due date %s is before start date %s",
			s.Name, s.NextDueDate, s.StartDate)
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("scheduled transaction %q: end date %s is before start date %s",
			s.Name, s.EndDate, s.StartDate)
	}
	if s.EndDate != nil && s.NextDueDate.After(*s.EndDate) {
		return fmt.Errorf("scheduled transaction %q: next due date %s is after end date %s",
			s.Name, s.NextDueDate, s.EndDate)
	}
	return nil
}

// ScheduledPatch holds the fields of an update; nil fields are left unchanged
type ScheduledPatch struct {
	Name         *string          `json:"name,omitempty"`
	Amount       *float64         `json:"amount,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Type         *TransactionType `json:"type,omitempty"`
	Frequency    *Frequency       `json:"frequency,omitempty"`
	StartDate    *Date            `json:"start_date,omitempty"`
	EndDate      *Date            `json:"end_date,omitempty"`
	ClearEndDate bool             `json:"clear_end_date,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// Apply returns a copy of s with the patch applied.
// A start date moved past the next due date pulls the next due date along.
func (s ScheduledTransaction) Apply(p ScheduledPatch) ScheduledTransaction {
	next := s
	if s.EndDate != nil {
		end := *s.EndDate
		next.EndDate = &end
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Frequency != nil {
		next.Frequency = *p.Frequency
	}
	if p.StartDate != nil {
		next.StartDate = *p.StartDate
		if next.NextDueDate.Before(next.StartDate) {
			next.NextDueDate = next.StartDate
		}
	}
	if p.ClearEndDate {
		next.EndDate = nil
	} else if p.EndDate != nil {
		end := *p.EndDate
		next.EndDate = &end
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	return next
}

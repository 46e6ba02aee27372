package models

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// CompoundingFrequency is how often interest is added to a savings balance
type CompoundingFrequency string

const (
	CompoundDaily   CompoundingFrequency = "daily"
	CompoundMonthly CompoundingFrequency = "monthly"
	CompoundYearly  CompoundingFrequency = "yearly"
)

// Valid reports whether f is a known frequency
func (f CompoundingFrequency) Valid() bool {
	switch f {
	case CompoundDaily, CompoundMonthly, CompoundYearly:
		return true
	}
	return false
}

// PeriodsPerYear returns n in (1 + r/n), or 0 for an unknown frequency
func (f CompoundingFrequency) PeriodsPerYear() float64 {
	switch f {
	case CompoundDaily:
		return 365
	case CompoundMonthly:
		return 12
	case CompoundYearly:
		return 1
	}
	return 0
}

// ExtraContribution is a one-time deposit on top of the monthly contribution
type ExtraContribution struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Date   Date    `json:"date"`
}

// SavingsGoal is a target amount to reach by a deadline
type SavingsGoal struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	TargetAmount         float64              `json:"target_amount"`
	Deadline             Date                 `json:"deadline"`
	StartingBalance      float64              `json:"starting_balance"`
	MonthlyContribution  float64              `json:"monthly_contribution"`
	InterestRate         float64              `json:"interest_rate"` // Annual, e.g. 6.5 for 6.5%
	CompoundingFrequency CompoundingFrequency `json:"compounding_frequency"`
	ExtraContributions   []ExtraContribution  `json:"extra_contributions"`
	CreatedAt            Date                 `json:"created_at"`
}

// Validate checks the invariants a goal must hold when it is stored
func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("savings goal name is required")
	}
	if math.IsNaN(g.TargetAmount) || g.TargetAmount < 0 {
		return fmt.Errorf("savings goal %q: target amount must be >= 0", g.Name)
	}
	if g.Deadline.IsZero() {
		return fmt.Errorf("savings goal %q: deadline is required", g.Name)
	}
	if !g.CompoundingFrequency.Valid() {
		return fmt.Errorf("savings goal %q: unknown compounding frequency %q", g.Name, g.CompoundingFrequency)
	}
	return nil
}

// SavingsGoalPatch holds the fields of an update; nil fields are left unchanged
type SavingsGoalPatch struct {
	Name                 *string               `json:"name,omitempty"`
	TargetAmount         *float64              `json:"target_amount,omitempty"`
	Deadline             *Date                 `json:"deadline,omitempty"`
	StartingBalance      *float64              `json:"starting_balance,omitempty"`
	MonthlyContribution  *float64              `json:"monthly_contribution,omitempty"`
	InterestRate         *float64              `json:"interest_rate,omitempty"`
	CompoundingFrequency *CompoundingFrequency `json:"compounding_frequency,omitempty"`
}

// Apply returns a copy of g with the patch applied. g is not modified.
func (g SavingsGoal) Apply(p SavingsGoalPatch) SavingsGoal {
	next := g.clone()
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.TargetAmount != nil {
		next.TargetAmount = *p.TargetAmount
	}
	if p.Deadline != nil {
		next.Deadline = *p.Deadline
	}
	if p.StartingBalance != nil {
		next.StartingBalance = *p.StartingBalance
	}
	if p.MonthlyContribution != nil {
		next.MonthlyContribution = *p.MonthlyContribution
	}
	if p.InterestRate != nil {
		next.InterestRate = *p.InterestRate
	}
	if p.CompoundingFrequency != nil {
		next.CompoundingFrequency = *p.CompoundingFrequency
	}
	return next
}

// WithExtraContribution returns a copy of g with c appended
func (g SavingsGoal) WithExtraContribution(c ExtraContribution) SavingsGoal {
	next := g.clone()
	next.ExtraContributions = append(next.ExtraContributions, c)
	return next
}

// WithoutExtraContribution returns a copy of g without the contribution id
func (g SavingsGoal) WithoutExtraContribution(id string) SavingsGoal {
	next := g.clone()
	next.ExtraContributions = slices.DeleteFunc(next.ExtraContributions, func(c ExtraContribution) bool {
		return c.ID == id
	})
	return next
}

func (g SavingsGoal) clone() SavingsGoal {
	g.ExtraContributions = slices.Clone(g.ExtraContributions)
	if g.ExtraContributions == nil {
		g.ExtraContributions = []ExtraContribution{}
	}
	return g
}

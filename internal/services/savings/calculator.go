package savings

import (
	"math"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/services/calendar"
)

// MilestonePercents are the shares of the target reported as milestones
var MilestonePercents = []float64{25, 50, 75, 100}

// Calculator projects a savings goal forward from a given day
type Calculator struct {
	Goal  models.SavingsGoal
	Today models.Date
}

// NewCalculator creates a calculator for goal as seen on today
func NewCalculator(goal models.SavingsGoal, today models.Date) *Calculator {
	return &Calculator{Goal: goal, Today: today}
}

// Project is shorthand for NewCalculator(goal, today).RunProjection()
func Project(goal models.SavingsGoal, today models.Date) *models.SavingsProjection {
	return NewCalculator(goal, today).RunProjection()
}

// RunProjection projects the balance month by month from the start of the
// current month through the deadline month. Invalid amounts or rates give an
// empty projection with zero values.
func (c *Calculator) RunProjection() *models.SavingsProjection {
	g := c.Goal
	result := &models.SavingsProjection{
		Points:     []models.ProjectionPoint{},
		Milestones: []models.Milestone{},
	}
	if !c.validInputs() {
		return result
	}

	result.CurrentValue = c.CurrentValue()
	result.Progress = Progress(result.CurrentValue, g.TargetAmount)

	if !g.Deadline.After(c.Today) {
		// Already due: nothing left to project
		result.FutureValue = g.StartingBalance
		result.Milestones = Milestones(g.TargetAmount, nil)
		result.OnTrack = g.StartingBalance >= g.TargetAmount
		return result
	}

	result.Points, result.FutureValue = c.project(g.MonthlyContribution)
	result.Milestones = Milestones(g.TargetAmount, result.Points)
	result.OnTrack = result.FutureValue >= g.TargetAmount
	return result
}

// project runs the monthly loop with the given contribution
func (c *Calculator) project(contribution float64) ([]models.ProjectionPoint, float64) {
	g := c.Goal
	months := calendar.MonthsBetween(c.Today, g.Deadline)
	points := make([]models.ProjectionPoint, 0, months+1)

	month := calendar.StartOfMonth(c.Today)
	balance := g.StartingBalance

	for m := 0; m <= months; m++ {
		points = append(points, models.ProjectionPoint{Month: month, Balance: balance})

		balance = c.applyInterest(balance, month)
		balance += contribution
		balance += c.extraContributionsIn(month)

		month = calendar.NextMonth(month)
	}

	return points, balance
}

// applyInterest compounds one month of interest at the goal's frequency
func (c *Calculator) applyInterest(balance float64, month models.Date) float64 {
	rate := c.Goal.InterestRate / 100
	n := c.Goal.CompoundingFrequency.PeriodsPerYear()
	if rate == 0 || n == 0 {
		return balance
	}

	switch c.Goal.CompoundingFrequency {
	case models.CompoundDaily:
		days := calendar.DaysInMonth(month)
		return balance * math.Pow(1+rate/n, float64(days))
	case models.CompoundMonthly:
		return balance * (1 + rate/n)
	case models.CompoundYearly:
		if month.Month() == time.December {
			return balance * (1 + rate/n)
		}
	}
	return balance
}

// extraContributionsIn sums the one-time contributions dated in month
func (c *Calculator) extraContributionsIn(month models.Date) float64 {
	key := month.YearMonth()
	var total float64
	for _, extra := range c.Goal.ExtraContributions {
		if extra.Date.IsZero() || !isFinite(extra.Amount) {
			continue
		}
		if extra.Date.YearMonth() == key {
			total += extra.Amount
		}
	}
	return total
}

// CurrentValue replays whole months from the start of the current month up
// to today, so it is the starting balance until a projection month closes.
// Every step compounds once with (1 + r/n) whatever the configured
// frequency, unlike RunProjection.
func (c *Calculator) CurrentValue() float64 {
	return c.ValueSince(calendar.StartOfMonth(c.Today))
}

// ValueSince runs the CurrentValue replay from the month of start
func (c *Calculator) ValueSince(start models.Date) float64 {
	g := c.Goal
	rate := g.InterestRate / 100
	n := g.CompoundingFrequency.PeriodsPerYear()

	balance := g.StartingBalance
	month := calendar.StartOfMonth(start)
	for m := 0; m < calendar.MonthsBetween(month, c.Today); m++ {
		if n > 0 {
			balance *= 1 + rate/n
		}
		balance += g.MonthlyContribution
		balance += c.extraContributionsIn(month)
		month = calendar.NextMonth(month)
	}
	return balance
}

// RequiredContribution returns the smallest monthly contribution (to the
// cent) that brings the deadline value up to the target. It reports false
// when the goal is already due or the inputs are invalid.
func (c *Calculator) RequiredContribution() (float64, bool) {
	g := c.Goal
	if !c.validInputs() || !g.Deadline.After(c.Today) {
		return 0, false
	}

	reaches := func(contribution float64) bool {
		_, fv := c.project(contribution)
		return fv >= g.TargetAmount
	}

	if reaches(0) {
		return 0, true
	}

	hi := math.Max(g.TargetAmount, 1)
	for i := 0; i < 64 && !reaches(hi); i++ {
		hi *= 2
	}
	if !reaches(hi) {
		return 0, false
	}

	lo := 0.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if reaches(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	return math.Ceil(hi*100-1e-6) / 100, true
}

// Progress is current/target as a percentage capped at 100.
// A non-positive target has no meaningful progress and reports 0.
func Progress(current, target float64) float64 {
	if !isFinite(current) || !isFinite(target) || target <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, current/target*100))
}

// Milestones finds the first point reaching each of MilestonePercents
func Milestones(target float64, points []models.ProjectionPoint) []models.Milestone {
	milestones := []models.Milestone{}
	if !isFinite(target) || target <= 0 {
		return milestones
	}

	for _, pct := range MilestonePercents {
		m := models.Milestone{Percent: pct, Amount: target * pct / 100}
		for _, p := range points {
			if p.Balance >= m.Amount {
				m.Reached = true
				m.Month = p.Month
				break
			}
		}
		milestones = append(milestones, m)
	}
	return milestones
}

func (c *Calculator) validInputs() bool {
	g := c.Goal
	return isFinite(g.StartingBalance) &&
		isFinite(g.MonthlyContribution) &&
		isFinite(g.InterestRate) &&
		isFinite(g.TargetAmount) &&
		!g.Deadline.IsZero() &&
		!c.Today.IsZero()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package tracker

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/savings"
)

func goalID(g models.SavingsGoal) string { return g.ID }

// Goals returns every savings goal
func (t *Tracker) Goals() ([]models.SavingsGoal, error) {
	return t.repo.Goals()
}

// Goal returns the goal with id
func (t *Tracker) Goal(id string) (models.SavingsGoal, error) {
	goals, err := t.repo.Goals()
	if err != nil {
		return models.SavingsGoal{}, err
	}
	i := indexOf(goals, id, goalID)
	if i < 0 {
		return models.SavingsGoal{}, notFound("savings goal", id)
	}
	return goals[i], nil
}

// AddGoal stores a new goal. The id and creation date are assigned here;
// compounding defaults to monthly.
func (t *Tracker) AddGoal(goal models.SavingsGoal) (models.SavingsGoal, error) {
	goal.ID = newID()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = t.Today()
	}
	if goal.CompoundingFrequency == "" {
		goal.CompoundingFrequency = models.CompoundMonthly
	}
	goal.ExtraContributions = slices.Clone(goal.ExtraContributions)
	if goal.ExtraContributions == nil {
		goal.ExtraContributions = []models.ExtraContribution{}
	}
	if err := goal.Validate(); err != nil {
		return models.SavingsGoal{}, err
	}

	err := t.repo.UpdateGoals(func(goals []models.SavingsGoal) ([]models.SavingsGoal, error) {
		return append(goals, goal), nil
	})
	if err != nil {
		return models.SavingsGoal{}, fmt.Errorf("failed to save savings goal: %w", err)
	}

	t.entry(logrus.Fields{"goal_id": goal.ID, "target": goal.TargetAmount}).Info("Savings goal added")
	return goal, nil
}

// UpdateGoal applies patch to the goal with id
func (t *Tracker) UpdateGoal(id string, patch models.SavingsGoalPatch) (models.SavingsGoal, error) {
	return t.modifyGoal(id, "Savings goal updated", func(g models.SavingsGoal) (models.SavingsGoal, error) {
		next := g.Apply(patch)
		return next, next.Validate()
	})
}

// DeleteGoal removes the goal with id
func (t *Tracker) DeleteGoal(id string) error {
	err := t.repo.UpdateGoals(func(goals []models.SavingsGoal) ([]models.SavingsGoal, error) {
		i := indexOf(goals, id, goalID)
		if i < 0 {
			return nil, notFound("savings goal", id)
		}
		return slices.Delete(goals, i, i+1), nil
	})
	if err != nil {
		return err
	}

	t.entry(logrus.Fields{"goal_id": id}).Info("Savings goal deleted")
	return nil
}

// AddExtraContribution records a one-time deposit on the goal
func (t *Tracker) AddExtraContribution(id string, amount float64, date models.Date) (models.SavingsGoal, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.SavingsGoal{}, fmt.Errorf("extra contribution must be > 0")
	}
	if date.IsZero() {
		date = t.Today()
	}
	extra := models.ExtraContribution{ID: newID(), Amount: amount, Date: date}

	return t.modifyGoal(id, "Extra contribution added", func(g models.SavingsGoal) (models.SavingsGoal, error) {
		return g.WithExtraContribution(extra), nil
	})
}

// RemoveExtraContribution deletes one extra contribution from the goal
func (t *Tracker) RemoveExtraContribution(id, contributionID string) (models.SavingsGoal, error) {
	return t.modifyGoal(id, "Extra contribution removed", func(g models.SavingsGoal) (models.SavingsGoal, error) {
		if indexOf(g.ExtraContributions, contributionID, func(c models.ExtraContribution) string { return c.ID }) < 0 {
			return g, notFound("extra contribution", contributionID)
		}
		return g.WithoutExtraContribution(contributionID), nil
	})
}

// ProjectGoal projects the goal with id as of today
func (t *Tracker) ProjectGoal(id string) (*models.SavingsProjection, error) {
	goal, err := t.Goal(id)
	if err != nil {
		return nil, err
	}
	return savings.Project(goal, t.Today()), nil
}

// RequiredContribution is the monthly contribution the goal needs to reach
// its target. It reports false when the goal is already due.
func (t *Tracker) RequiredContribution(id string) (float64, bool, error) {
	goal, err := t.Goal(id)
	if err != nil {
		return 0, false, err
	}
	amount, ok := savings.NewCalculator(goal, t.Today()).RequiredContribution()
	return amount, ok, nil
}

func (t *Tracker) modifyGoal(id, message string, fn func(models.SavingsGoal) (models.SavingsGoal, error)) (models.SavingsGoal, error) {
	var updated models.SavingsGoal
	err := t.repo.UpdateGoals(func(goals []models.SavingsGoal) ([]models.SavingsGoal, error) {
		i := indexOf(goals, id, goalID)
		if i < 0 {
			return nil, notFound("savings goal", id)
		}
		next, err := fn(goals[i])
		if err != nil {
			return nil, err
		}
		goals[i] = next
		updated = next
		return goals, nil
	})
	if err != nil {
		return models.SavingsGoal{}, err
	}

	t.entry(logrus.Fields{"goal_id": id}).Info(message)
	return updated, nil
}

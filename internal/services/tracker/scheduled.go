package tracker

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/recurring"
)

func scheduledID(s models.ScheduledTransaction) string { return s.ID }

// LogOutcome is what logging a scheduled transaction produced
type LogOutcome struct {
	Entries []models.Transaction
	Next    *models.ScheduledTransaction // nil when the item expired and was deleted
	Expired bool
}

// Scheduled returns every scheduled transaction
func (t *Tracker) Scheduled() ([]models.ScheduledTransaction, error) {
	return t.repo.Scheduled()
}

// ScheduledItem returns the scheduled transaction with id
func (t *Tracker) ScheduledItem(id string) (models.ScheduledTransaction, error) {
	items, err := t.repo.Scheduled()
	if err != nil {
		return models.ScheduledTransaction{}, err
	}
	i := indexOf(items, id, scheduledID)
	if i < 0 {
		return models.ScheduledTransaction{}, notFound("scheduled transaction", id)
	}
	return items[i], nil
}

// DueScheduled returns the scheduled transactions due today or earlier
func (t *Tracker) DueScheduled() ([]models.ScheduledTransaction, error) {
	items, err := t.repo.Scheduled()
	if err != nil {
		return nil, err
	}
	return recurring.Due(items, t.Today()), nil
}

// AddScheduled stores a new scheduled transaction. The first due date is
// the start date unless given.
func (t *Tracker) AddScheduled(st models.ScheduledTransaction) (models.ScheduledTransaction, error) {
	st.ID = newID()
	if st.StartDate.IsZero() {
		st.StartDate = t.Today()
	}
	if st.NextDueDate.IsZero() {
		st.NextDueDate = st.StartDate
	}
	if err := st.Validate(); err != nil {
		return models.ScheduledTransaction{}, err
	}

	err := t.repo.UpdateScheduled(func(items []models.ScheduledTransaction) ([]models.ScheduledTransaction, error) {
		return append(items, st), nil
	})
	if err != nil {
		return models.ScheduledTransaction{}, fmt.Errorf("failed to save scheduled transaction: %w", err)
	}

	t.entry(logrus.Fields{"scheduled_id": st.ID, "frequency": st.Frequency}).Info("Scheduled transaction added")
	return st, nil
}

// UpdateScheduled applies patch to the scheduled transaction with id
func (t *Tracker) UpdateScheduled(id string, patch models.ScheduledPatch) (models.ScheduledTransaction, error) {
	var updated models.ScheduledTransaction
	err := t.repo.UpdateScheduled(func(items []models.ScheduledTransaction) ([]models.ScheduledTransaction, error) {
		i := indexOf(items, id, scheduledID)
		if i < 0 {
			return nil, notFound("scheduled transaction", id)
		}
		next := items[i].Apply(patch)
		if err := next.Validate(); err != nil {
			return nil, err
		}
		items[i] = next
		updated = next
		return items, nil
	})
	if err != nil {
		return models.ScheduledTransaction{}, err
	}

	t.entry(logrus.Fields{"scheduled_id": id}).Info("Scheduled transaction updated")
	return updated, nil
}

// DeleteScheduled removes the scheduled transaction with id
func (t *Tracker) DeleteScheduled(id string) error {
	err := t.repo.UpdateScheduled(func(items []models.ScheduledTransaction) ([]models.ScheduledTransaction, error) {
		i := indexOf(items, id, scheduledID)
		if i < 0 {
			return nil, notFound("scheduled transaction", id)
		}
		return slices.Delete(items, i, i+1), nil
	})
	if err != nil {
		return err
	}

	t.entry(logrus.Fields{"scheduled_id": id}).Info("Scheduled transaction deleted")
	return nil
}

// LogScheduled materialises the next occurrence of the scheduled
// transaction into the ledger and advances it. An item whose next date
// would pass its end date is deleted instead.
func (t *Tracker) LogScheduled(id string) (LogOutcome, error) {
	var outcome LogOutcome
	err := t.repo.UpdateScheduled(func(items []models.ScheduledTransaction) ([]models.ScheduledTransaction, error) {
		i := indexOf(items, id, scheduledID)
		if i < 0 {
			return nil, notFound("scheduled transaction", id)
		}
		result, ok := recurring.Log(items[i])
		if !ok {
			return nil, fmt.Errorf("scheduled transaction %q: unknown frequency %q", id, items[i].Frequency)
		}

		outcome.Entries = []models.Transaction{}
		if result.Entry != nil {
			outcome.Entries = append(outcome.Entries, *result.Entry)
		}
		if result.Expired {
			outcome.Expired = true
			return slices.Delete(items, i, i+1), nil
		}
		items[i] = *result.Next
		outcome.Next = result.Next
		return items, nil
	})
	if err != nil {
		return LogOutcome{}, err
	}

	if len(outcome.Entries) > 0 {
		stored, err := t.appendTransactions(outcome.Entries...)
		if err != nil {
			return outcome, fmt.Errorf("scheduled transaction advanced but the ledger was not saved, re-add %s: %w",
				describeEntries(outcome.Entries), err)
		}
		outcome.Entries = stored
	}

	t.logOutcome(id, outcome)
	return outcome, nil
}

// LogDue logs every occurrence due up to today for all scheduled
// transactions, returning the entries added and the ids of expired items
func (t *Tracker) LogDue() ([]models.Transaction, []string, error) {
	today := t.Today()
	var entries []models.Transaction
	var expired []string
	outcomes := make(map[string]LogOutcome)

	err := t.repo.UpdateScheduled(func(items []models.ScheduledTransaction) ([]models.ScheduledTransaction, error) {
		kept := make([]models.ScheduledTransaction, 0, len(items))
		for _, st := range items {
			result := recurring.CatchUp(st, today)
			entries = append(entries, result.Entries...)
			if len(result.Entries) > 0 {
				outcomes[st.ID] = LogOutcome{Entries: result.Entries, Next: result.Next, Expired: result.Expired}
			}
			if result.Expired {
				expired = append(expired, st.ID)
				continue
			}
			kept = append(kept, *result.Next)
		}
		return kept, nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(entries) == 0 {
		t.entry(nil).Debug("No scheduled transactions due")
		return []models.Transaction{}, expired, nil
	}

	stored, err := t.appendTransactions(entries...)
	if err != nil {
		return entries, expired, fmt.Errorf("scheduled transactions advanced but the ledger was not saved, re-add %s: %w",
			describeEntries(entries), err)
	}
	entries = stored
	for id, outcome := range outcomes {
		t.logOutcome(id, outcome)
	}
	return entries, expired, nil
}

func (t *Tracker) logOutcome(id string, outcome LogOutcome) {
	fields := logrus.Fields{"scheduled_id": id, "entries": len(outcome.Entries)}
	if outcome.Expired {
		t.entry(fields).Info("Scheduled transaction logged and expired")
		return
	}
	fields["next_due"] = outcome.Next.NextDueDate.String()
	t.entry(fields).Info("Scheduled transaction logged")
}

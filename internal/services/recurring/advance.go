// Package recurring advances scheduled transactions and materialises their
// occurrences as ledger entries.
package recurring

import (
	"sort"

	"fintrack/internal/models"
)

// MaxCatchUp bounds how many occurrences CatchUp logs for one item
const MaxCatchUp = 1000

// Next returns the occurrence after date. Month and year steps normalise the
// way time.Time.AddDate does: 2024-01-31 monthly is 2024-03-02 and
// 2024-02-29 yearly is 2025-03-01. It reports false for an unknown frequency.
func Next(date models.Date, freq models.Frequency) (models.Date, bool) {
	switch freq {
	case models.FrequencyWeekly:
		return date.AddDate(0, 0, 7), true
	case models.FrequencyMonthly:
		return date.AddDate(0, 1, 0), true
	case models.FrequencyYearly:
		return date.AddDate(1, 0, 0), true
	}
	return models.Date{}, false
}

// LogResult is the outcome of logging one occurrence
type LogResult struct {
	Entry   *models.Transaction          // nil when the item was already past its end date
	Next    *models.ScheduledTransaction // nil when Expired
	Expired bool                         // the item should be deleted
}

// Log materialises the occurrence at st.NextDueDate and advances the item.
// When the advanced date passes st.EndDate the item expires: the entry is
// still produced and Next is nil. An item already past its end date expires
// without an entry. It reports false for an item with an unknown frequency.
func Log(st models.ScheduledTransaction) (LogResult, bool) {
	nextDue, ok := Next(st.NextDueDate, st.Frequency)
	if !ok {
		return LogResult{}, false
	}
	if st.EndDate != nil && st.NextDueDate.After(*st.EndDate) {
		return LogResult{Expired: true}, true
	}

	entry := Entry(st)
	result := LogResult{Entry: &entry}
	if st.EndDate != nil && nextDue.After(*st.EndDate) {
		result.Expired = true
		return result, true
	}

	advanced := st.Apply(models.ScheduledPatch{})
	advanced.NextDueDate = nextDue
	result.Next = &advanced
	return result, true
}

// Entry describes the occurrence at st.NextDueDate as a ledger entry
func Entry(st models.ScheduledTransaction) models.Transaction {
	entry := models.Transaction{
		Date:        st.NextDueDate,
		Amount:      st.Amount,
		Description: st.Name,
		Category:    st.Category,
		Type:        st.Type,
		Source:      models.SourceScheduled,
		SourceID:    st.ID,
	}
	entry.Hash = entry.ComputeHash()
	return entry
}

// Due returns the items whose next due date is on or before today, earliest first
func Due(items []models.ScheduledTransaction, today models.Date) []models.ScheduledTransaction {
	due := []models.ScheduledTransaction{}
	for _, st := range items {
		if !st.NextDueDate.After(today) {
			due = append(due, st)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextDueDate.Before(due[j].NextDueDate)
	})
	return due
}

// CatchUpResult is every occurrence of one item logged up to a day
type CatchUpResult struct {
	Entries []models.Transaction
	Next    *models.ScheduledTransaction // nil when the item expired
	Expired bool
}

// CatchUp logs st repeatedly while its next due date is on or before today,
// stopping early if it expires. At most MaxCatchUp occurrences are logged.
func CatchUp(st models.ScheduledTransaction, today models.Date) CatchUpResult {
	current := st
	result := CatchUpResult{Entries: []models.Transaction{}, Next: &current}

	for i := 0; i < MaxCatchUp && !current.NextDueDate.After(today); i++ {
		logged, ok := Log(current)
		if !ok {
			break
		}
		if logged.Entry != nil {
			result.Entries = append(result.Entries, *logged.Entry)
		}
		if logged.Expired {
			result.Next = nil
			result.Expired = true
			return result
		}
		current = *logged.Next
		result.Next = &current
	}
	return result
}

// Upcoming lists the occurrences of st from its next due date through until,
// honouring the end date
func Upcoming(st models.ScheduledTransaction, until models.Date) []models.Date {
	dates := []models.Date{}
	date := st.NextDueDate
	for i := 0; i < MaxCatchUp && !date.After(until); i++ {
		if st.EndDate != nil && date.After(*st.EndDate) {
			break
		}
		dates = append(dates, date)
		next, ok := Next(date, st.Frequency)
		if !ok {
			break
		}
		date = next
	}
	return dates
}

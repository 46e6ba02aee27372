package recurring

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"fintrack/internal/models"
)

var frequencies = map[models.Frequency]rrule.Frequency{
	models.FrequencyWeekly:  rrule.WEEKLY,
	models.FrequencyMonthly: rrule.MONTHLY,
	models.FrequencyYearly:  rrule.YEARLY,
}

// Rule builds the RFC 5545 recurrence options for st, starting at its
// next due date
func Rule(st models.ScheduledTransaction) (rrule.ROption, error) {
	freq, ok := frequencies[st.Frequency]
	if !ok {
		return rrule.ROption{}, fmt.Errorf("scheduled transaction %q: unknown frequency %q", st.Name, st.Frequency)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: 1,
		Dtstart:  st.NextDueDate.Time,
	}
	if st.EndDate != nil {
		opt.Until = st.EndDate.Time
	}
	return opt, nil
}

// RRule returns the DTSTART and RRULE lines for st, as used in iCalendar
// exports
func RRule(st models.ScheduledTransaction) (string, error) {
	opt, err := Rule(st)
	if err != nil {
		return "", err
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("failed to build RRULE: %w", err)
	}
	return rule.String(), nil
}

// Describe returns just the RRULE part for display
func Describe(st models.ScheduledTransaction) string {
	opt, err := Rule(st)
	if err != nil {
		return ""
	}
	return "RRULE:" + opt.RRuleString()
}

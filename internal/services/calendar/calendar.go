// Package calendar holds the month arithmetic shared by the savings and loan
// calculators.
package calendar

import (
	"time"

	"fintrack/internal/models"
)

// MonthsBetween returns the number of calendar months from a to b:
// (b.year - a.year)*12 + (b.month - a.month). The day of month is ignored,
// so 2024-01-31 to 2024-02-01 is one month and 2024-01-01 to 2024-01-31 is
// zero. The result is negative when b's month precedes a's.
func MonthsBetween(a, b models.Date) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// StartOfMonth returns the first day of d's month
func StartOfMonth(d models.Date) models.Date {
	return models.NewDate(d.Year(), d.Month(), 1)
}

// DaysInMonth returns the number of days in d's month
func DaysInMonth(d models.Date) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextMonth returns the first day of the month after d's month
func NextMonth(d models.Date) models.Date {
	return models.NewDate(d.Year(), d.Month()+1, 1)
}

// AddMonthsClamped moves d forward n calendar months, keeping the day of
// month but clamping it to the target month's length: 2024-01-31 plus one
// month is 2024-02-29.
func AddMonthsClamped(d models.Date, n int) models.Date {
	first := models.NewDate(d.Year(), d.Month()+time.Month(n), 1)
	return models.NewDate(first.Year(), first.Month(), min(d.Day(), DaysInMonth(first)))
}

// SameMonth reports whether a and b fall in the same calendar month
func SameMonth(a, b models.Date) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Today returns the calendar date of now in its own location
func Today(now time.Time) models.Date {
	return models.DateOf(now)
}

package recurring

import (
	"strings"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func newScheduled(t *testing.T, freq models.Frequency, start string) models.ScheduledTransaction {
	t.Helper()
	d := testutil.Date(t, start)
	return models.ScheduledTransaction{
		ID:          "st-1",
		Name:        "Rent",
		Amount:      1200,
		Category:    "Housing",
		Type:        models.Expense,
		Frequency:   freq,
		StartDate:   d,
		NextDueDate: d,
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		date string
		freq models.Frequency
		want string
	}{
		{"2024-01-31", models.FrequencyMonthly, "2024-03-02"},
		{"2024-02-29", models.FrequencyYearly, "2025-03-01"},
		{"2024-01-15", models.FrequencyMonthly, "2024-02-15"},
		{"2024-12-31", models.FrequencyWeekly, "2025-01-07"},
		{"2023-02-28", models.FrequencyYearly, "2024-02-28"},
		{"2024-03-31", models.FrequencyMonthly, "2024-05-01"},
	}

	for _, tt := range tests {
		t.Run(tt.date+" "+string(tt.freq), func(t *testing.T) {
			got, ok := Next(testutil.Date(t, tt.date), tt.freq)
			if !ok {
				t.Fatal("expected a next date")
			}
			if got.String() != tt.want {
				t.Errorf("Next(%s, %s) = %s, want %s", tt.date, tt.freq, got, tt.want)
			}
		})
	}

	if _, ok := Next(testutil.Date(t, "2024-01-01"), "fortnightly"); ok {
		t.Error("unknown frequency should not advance")
	}
}

func TestLogAdvances(t *testing.T) {
	st := newScheduled(t, models.FrequencyMonthly, "2024-01-31")

	result, ok := Log(st)

	if !ok {
		t.Fatal("expected log to succeed")
	}
	if result.Expired || result.Next == nil {
		t.Fatal("item without end date should not expire")
	}
	if result.Next.NextDueDate.String() != "2024-03-02" {
		t.Errorf("NextDueDate = %s, want 2024-03-02", result.Next.NextDueDate)
	}
	if st.NextDueDate.String() != "2024-01-31" {
		t.Error("input item was modified")
	}

	entry := result.Entry
	if entry.Date.String() != "2024-01-31" || entry.Amount != 1200 || entry.Description != "Rent" ||
		entry.Category != "Housing" || entry.Type != models.Expense {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Source != models.SourceScheduled || entry.SourceID != "st-1" {
		t.Errorf("unexpected entry source: %+v", entry)
	}
}

func TestLogExpiresAtEndDate(t *testing.T) {
	for _, end := range []string{"2024-03-15", "2024-03-20", "2024-04-14"} {
		t.Run(end, func(t *testing.T) {
			st := newScheduled(t, models.FrequencyMonthly, "2024-01-15")
			st.EndDate = testutil.DatePtr(t, end)

			var logged []string
			current := &st
			for i := 0; i < 10 && current != nil; i++ {
				result, ok := Log(*current)
				if !ok {
					t.Fatal("log failed")
				}
				logged = append(logged, result.Entry.Date.String())
				if result.Expired {
					if result.Next != nil {
						t.Error("expired result should not carry a next item")
					}
					current = nil
					break
				}
				if result.Next.NextDueDate.After(*st.EndDate) {
					t.Errorf("advanced past end date: %s", result.Next.NextDueDate)
				}
				current = result.Next
			}

			if current != nil {
				t.Fatal("item never expired")
			}
			want := "2024-01-15,2024-02-15,2024-03-15"
			if got := strings.Join(logged, ","); got != want {
				t.Errorf("logged %s, want %s", got, want)
			}
		})
	}
}

func TestDue(t *testing.T) {
	a := newScheduled(t, models.FrequencyMonthly, "2024-03-10")
	a.ID = "a"
	b := newScheduled(t, models.FrequencyWeekly, "2024-03-01")
	b.ID = "b"
	c := newScheduled(t, models.FrequencyYearly, "2024-03-11")
	c.ID = "c"

	due := Due([]models.ScheduledTransaction{a, b, c}, testutil.Date(t, "2024-03-10"))

	if len(due) != 2 || due[0].ID != "b" || due[1].ID != "a" {
		t.Errorf("Due = %+v, want [b a]", due)
	}
}

func TestCatchUp(t *testing.T) {
	t.Run("logs every missed week", func(t *testing.T) {
		st := newScheduled(t, models.FrequencyWeekly, "2024-01-01")

		result := CatchUp(st, testutil.Date(t, "2024-01-29"))

		if len(result.Entries) != 5 {
			t.Fatalf("got %d entries, want 5", len(result.Entries))
		}
		if result.Expired || result.Next == nil {
			t.Fatal("item should still be active")
		}
		if result.Next.NextDueDate.String() != "2024-02-05" {
			t.Errorf("NextDueDate = %s, want 2024-02-05", result.Next.NextDueDate)
		}
	})

	t.Run("stops at expiry", func(t *testing.T) {
		st := newScheduled(t, models.FrequencyMonthly, "2024-01-01")
		st.EndDate = testutil.DatePtr(t, "2024-02-15")

		result := CatchUp(st, testutil.Date(t, "2024-12-31"))

		if len(result.Entries) != 2 || !result.Expired || result.Next != nil {
			t.Errorf("expected two entries then expiry, got %d entries expired=%v", len(result.Entries), result.Expired)
		}
	})

	t.Run("nothing due", func(t *testing.T) {
		st := newScheduled(t, models.FrequencyMonthly, "2024-06-01")

		result := CatchUp(st, testutil.Date(t, "2024-05-31"))

		if len(result.Entries) != 0 || result.Next == nil || !result.Next.NextDueDate.Equal(st.NextDueDate) {
			t.Errorf("expected no change, got %+v", result)
		}
	})
}

func TestUpcoming(t *testing.T) {
	st := newScheduled(t, models.FrequencyMonthly, "2024-01-31")
	st.EndDate = testutil.DatePtr(t, "2024-05-01")

	var got []string
	for _, d := range Upcoming(st, testutil.Date(t, "2024-12-31")) {
		got = append(got, d.String())
	}

	want := "2024-01-31,2024-03-02,2024-04-02"
	if strings.Join(got, ",") != want {
		t.Errorf("Upcoming = %v, want %s", got, want)
	}
}

func TestRRule(t *testing.T) {
	st := newScheduled(t, models.FrequencyMonthly, "2024-01-15")
	st.EndDate = testutil.DatePtr(t, "2024-12-31")

	rule, err := RRule(st)
	if err != nil {
		t.Fatalf("RRule failed: %v", err)
	}
	testutil.AssertOutput(t, rule).ContainsAll("DTSTART", "FREQ=MONTHLY", "UNTIL=20241231")

	testutil.AssertOutput(t, Describe(newScheduled(t, models.FrequencyWeekly, "2024-01-01"))).
		Contains("RRULE:").
		Contains("FREQ=WEEKLY").
		NotContains("UNTIL")

	bad := newScheduled(t, "daily", "2024-01-01")
	if _, err := RRule(bad); err == nil {
		t.Error("expected an error for an unknown frequency")
	}
}

func TestLogPastEndDateHasNoEntry(t *testing.T) {
	st := newScheduled(t, models.FrequencyMonthly, "2024-02-01")
	st.EndDate = testutil.DatePtr(t, "2024-01-15")

	result, ok := Log(st)

	if !ok {
		t.Fatal("expected log to succeed")
	}
	if !result.Expired || result.Next != nil || result.Entry != nil {
		t.Errorf("result = %+v, want expired without an entry", result)
	}

	caught := CatchUp(st, testutil.Date(t, "2024-06-01"))
	if !caught.Expired || len(caught.Entries) != 0 {
		t.Errorf("CatchUp = %+v, want expired without entries", caught)
	}
}

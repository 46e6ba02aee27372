package main

import (
	"fmt"

	"fintrack/internal/models"
	"fintrack/internal/services/recurring"
)

func (a *app) scheduledCmd(args []string) error {
	verb, rest, err := subcommand("scheduled", args, "add", "list", "due", "log", "rrule", "delete")
	if err != nil {
		return err
	}

	switch verb {
	case "add":
		return a.scheduledAdd(rest)
	case "list":
		if err := parseNoArgs(a.flagSet("scheduled list"), rest); err != nil {
			return err
		}
		items, err := a.tracker.Scheduled()
		if err != nil {
			return err
		}
		return a.printScheduled(items, "No scheduled transactions.")
	case "due":
		if err := parseNoArgs(a.flagSet("scheduled due"), rest); err != nil {
			return err
		}
		items, err := a.tracker.DueScheduled()
		if err != nil {
			return err
		}
		return a.printScheduled(items, "Nothing is due.")
	case "log":
		return a.scheduledLog(rest)
	case "rrule":
		id, err := withID(a.flagSet("scheduled rrule"), rest)
		if err != nil {
			return err
		}
		return a.scheduledRRule(id)
	default:
		id, err := withID(a.flagSet("scheduled delete"), rest)
		if err != nil {
			return err
		}
		if err := a.tracker.DeleteScheduled(id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted scheduled transaction %s\n", id)
		return nil
	}
}

func (a *app) scheduledAdd(args []string) error {
	fs := a.flagSet("scheduled add")
	name := fs.String("name", "", "name shown in the ledger")
	amount := fs.Float64("amount", 0, "amount")
	txType := fs.String("type", string(models.Expense), "income or expense")
	category := fs.String("category", "", "ledger category")
	frequency := fs.String("frequency", string(models.FrequencyMonthly), "weekly, monthly or yearly")
	notes := fs.String("notes", "", "free-form notes")
	var start, end dateFlag
	fs.Var(&start, "start", "first due date (default today)")
	fs.Var(&end, "end", "last possible due date")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	st := models.ScheduledTransaction{
		Name:      *name,
		Amount:    *amount,
		Category:  *category,
		Type:      models.TransactionType(*txType),
		Frequency: models.Frequency(*frequency),
		StartDate: start.date,
		Notes:     *notes,
	}
	if !end.date.IsZero() {
		st.EndDate = &end.date
	}

	st, err := a.tracker.AddScheduled(st)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added scheduled transaction %s (%s), next due %s\n", st.Name, st.ID, st.NextDueDate)
	return nil
}

func (a *app) printScheduled(items []models.ScheduledTransaction, empty string) error {
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, empty)
		return nil
	}

	tw := newTable(a.stdout)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tAMOUNT\tNEXT DUE\tRULE")
	for _, st := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			st.ID, st.Name, st.Type, a.tracker.Format(st.Amount), st.NextDueDate, recurring.Describe(st))
	}
	return tw.Flush()
}

func (a *app) scheduledLog(args []string) error {
	if len(args) > 0 && (args[0] == "--all" || args[0] == "-all") {
		if err := parseNoArgs(a.flagSet("scheduled log"), args[1:]); err != nil {
			return err
		}
		return a.logDue()
	}

	id, err := withID(a.flagSet("scheduled log"), args)
	if err != nil {
		return err
	}
	out, err := a.tracker.LogScheduled(id)
	if err != nil {
		return err
	}
	for _, e := range out.Entries {
		fmt.Fprintf(a.stdout, "Logged %s %s on %s\n", e.Description, a.tracker.Format(e.Amount), e.Date)
	}
	if out.Expired {
		fmt.Fprintln(a.stdout, "Scheduled transaction reached its end date and was removed.")
	} else {
		fmt.Fprintf(a.stdout, "Next due %s\n", out.Next.NextDueDate)
	}
	return nil
}

// logDue logs every due occurrence, used by "scheduled log --all" and watch
func (a *app) logDue() error {
	entries, expired, err := a.tracker.LogDue()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.stdout, "Logged %s %s on %s\n", e.Description, a.tracker.Format(e.Amount), e.Date)
	}
	fmt.Fprintf(a.stdout, "%d entries logged, %d scheduled transactions expired\n", len(entries), len(expired))
	return nil
}

func (a *app) scheduledRRule(id string) error {
	st, err := a.tracker.ScheduledItem(id)
	if err != nil {
		return err
	}
	rule, err := recurring.RRule(st)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, rule)
	return nil
}

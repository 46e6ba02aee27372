package main

import (
	"fmt"

	"fintrack/internal/models"
	"fintrack/internal/services/loans"
)

func (a *app) loanCmd(args []string) error {
	verb, rest, err := subcommand("loan", args, "add", "list", "emi", "schedule", "repay", "delete")
	if err != nil {
		return err
	}

	switch verb {
	case "add":
		return a.loanAdd(rest)
	case "list":
		return a.loanList(rest)
	case "emi":
		return a.loanEMI(rest)
	case "schedule":
		return a.loanSchedule(rest)
	case "repay":
		return a.loanRepay(rest)
	default:
		id, err := withID(a.flagSet("loan delete"), rest)
		if err != nil {
			return err
		}
		if err := a.tracker.DeleteLoan(id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted loan %s\n", id)
		return nil
	}
}

func (a *app) loanAdd(args []string) error {
	fs := a.flagSet("loan add")
	loanType := fs.String("type", string(models.LoanBorrowed), "lent or borrowed")
	person := fs.String("person", "", "who the loan is with")
	amount := fs.Float64("amount", 0, "total amount")
	rate := fs.Float64("rate", 0, "annual interest rate in percent")
	interest := fs.String("interest", string(models.InterestSimple), "simple or compound")
	schedule := fs.String("schedule", string(models.RepaymentOneTime), "one-time or monthly")
	notes := fs.String("notes", "", "free-form notes")
	var date, due dateFlag
	fs.Var(&date, "date", "loan date (default today)")
	fs.Var(&due, "due", "due date (YYYY-MM-DD)")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	loan, err := a.tracker.AddLoan(models.Loan{
		Type:              models.LoanType(*loanType),
		Person:            *person,
		TotalAmount:       *amount,
		InterestRate:      *rate,
		InterestType:      models.InterestType(*interest),
		Date:              date.date,
		DueDate:           due.date,
		RepaymentSchedule: models.RepaymentSchedule(*schedule),
		Notes:             *notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added loan with %s (%s)\n", loan.Person, loan.ID)
	return nil
}

func (a *app) loanList(args []string) error {
	if err := parseNoArgs(a.flagSet("loan list"), args); err != nil {
		return err
	}
	all, err := a.tracker.Loans()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(a.stdout, "No loans.")
		return nil
	}

	tw := newTable(a.stdout)
	fmt.Fprintln(tw, "ID\tTYPE\tPERSON\tTOTAL\tOUTSTANDING\tDUE\tSTATUS")
	for _, l := range all {
		status := "open"
		if l.IsSettled() {
			status = "settled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Type, l.Person, a.tracker.Format(l.TotalAmount),
			a.tracker.Format(l.OutstandingAmount), l.DueDate, status)
	}
	return tw.Flush()
}

func (a *app) loanEMI(args []string) error {
	id, err := withID(a.flagSet("loan emi"), args)
	if err != nil {
		return err
	}
	p, err := a.tracker.LoanPayment(id)
	if err != nil {
		return err
	}
	a.printPayment(p)
	return nil
}

func (a *app) printPayment(p models.LoanPayment) {
	if p.Months == 0 {
		fmt.Fprintln(a.stdout, "No monthly payment applies.")
		return
	}
	fmt.Fprintf(a.stdout, "Months:          %d\n", p.Months)
	fmt.Fprintf(a.stdout, "Monthly payment: %s\n", a.tracker.Format(p.MonthlyPayment))
	fmt.Fprintf(a.stdout, "Total payment:   %s\n", a.tracker.Format(p.TotalPayment))
	fmt.Fprintf(a.stdout, "Total interest:  %s\n", a.tracker.Format(p.TotalInterest))
}

func (a *app) loanSchedule(args []string) error {
	id, err := withID(a.flagSet("loan schedule"), args)
	if err != nil {
		return err
	}
	rows, err := a.tracker.Amortization(id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.stdout, "No repayment schedule applies.")
		return nil
	}

	tw := newTable(a.stdout)
	fmt.Fprintln(tw, "#\tDATE\tPAYMENT\tPRINCIPAL\tINTEREST\tBALANCE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Number, r.Date,
			a.tracker.Format(r.Payment), a.tracker.Format(r.Principal),
			a.tracker.Format(r.Interest), a.tracker.Format(r.Balance))
	}
	return tw.Flush()
}

func (a *app) loanRepay(args []string) error {
	fs := a.flagSet("loan repay")
	amount := fs.Float64("amount", 0, "repayment amount")
	var date dateFlag
	fs.Var(&date, "date", "repayment date (default today)")
	id, err := withID(fs, args)
	if err != nil {
		return err
	}

	loan, err := a.tracker.RepayLoan(id, *amount, date.date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Recorded %s; outstanding %s\n",
		a.tracker.Format(*amount), a.tracker.Format(loan.OutstandingAmount))
	return nil
}

// calcCmd is the standalone EMI calculator
func (a *app) calcCmd(args []string) error {
	fs := a.flagSet("calc")
	amount := fs.Float64("amount", 0, "principal")
	rate := fs.Float64("rate", 0, "annual interest rate in percent")
	years := fs.Float64("years", 0, "term in years")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	p, ok := loans.Calculate(*amount, *rate, *years)
	if !ok {
		return fmt.Errorf("calc: amount, rate and years must all be > 0")
	}
	a.printPayment(p)
	return nil
}

package main

import (
	"flag"
	"fmt"

	"fintrack/internal/models"
)

func (a *app) goalCmd(args []string) error {
	verb, rest, err := subcommand("goal", args, "add", "list", "project", "contribute", "update", "delete")
	if err != nil {
		return err
	}

	switch verb {
	case "add":
		return a.goalAdd(rest)
	case "list":
		return a.goalList(rest)
	case "project":
		return a.goalProject(rest)
	case "contribute":
		return a.goalContribute(rest)
	case "update":
		return a.goalUpdate(rest)
	default:
		fs := a.flagSet("goal delete")
		id, err := withID(fs, rest)
		if err != nil {
			return err
		}
		if err := a.tracker.DeleteGoal(id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted goal %s\n", id)
		return nil
	}
}

// goalFlags holds the editable goal fields
type goalFlags struct {
	name        string
	target      float64
	deadline    dateFlag
	start       float64
	monthly     float64
	rate        float64
	compounding string
}

func (a *app) newGoalFlags(name string) (*goalFlags, *flag.FlagSet) {
	g := &goalFlags{}
	fs := a.flagSet(name)
	fs.StringVar(&g.name, "name", "", "goal name")
	fs.Float64Var(&g.target, "target", 0, "target amount")
	fs.Var(&g.deadline, "deadline", "deadline (YYYY-MM-DD)")
	fs.Float64Var(&g.start, "start", 0, "starting balance")
	fs.Float64Var(&g.monthly, "monthly", 0, "monthly contribution")
	fs.Float64Var(&g.rate, "rate", 0, "annual interest rate in percent")
	fs.StringVar(&g.compounding, "compounding", string(models.CompoundMonthly), "daily, monthly or yearly")
	return g, fs
}

func (a *app) goalAdd(args []string) error {
	g, fs := a.newGoalFlags("goal add")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	goal, err := a.tracker.AddGoal(models.SavingsGoal{
		Name:                 g.name,
		TargetAmount:         g.target,
		Deadline:             g.deadline.date,
		StartingBalance:      g.start,
		MonthlyContribution:  g.monthly,
		InterestRate:         g.rate,
		CompoundingFrequency: models.CompoundingFrequency(g.compounding),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added goal %s (%s)\n", goal.Name, goal.ID)
	return nil
}

func (a *app) goalList(args []string) error {
	if err := parseNoArgs(a.flagSet("goal list"), args); err != nil {
		return err
	}
	goals, err := a.tracker.Goals()
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Fprintln(a.stdout, "No savings goals.")
		return nil
	}

	tw := newTable(a.stdout)
	fmt.Fprintln(tw, "ID\tNAME\tTARGET\tDEADLINE\tMONTHLY\tRATE")
	for _, g := range goals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f%% %s\n",
			g.ID, g.Name, a.tracker.Format(g.TargetAmount), g.Deadline,
			a.tracker.Format(g.MonthlyContribution), g.InterestRate, g.CompoundingFrequency)
	}
	return tw.Flush()
}

func (a *app) goalProject(args []string) error {
	fs := a.flagSet("goal project")
	points := fs.Bool("points", false, "print the month-by-month balance")
	id, err := withID(fs, args)
	if err != nil {
		return err
	}

	goal, err := a.tracker.Goal(id)
	if err != nil {
		return err
	}
	p, err := a.tracker.ProjectGoal(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Goal:          %s\n", goal.Name)
	fmt.Fprintf(a.stdout, "Target:        %s by %s\n", a.tracker.Format(goal.TargetAmount), goal.Deadline)
	fmt.Fprintf(a.stdout, "Current value: %s (%.1f%%)\n", a.tracker.Format(p.CurrentValue), p.Progress)
	fmt.Fprintf(a.stdout, "Future value:  %s\n", a.tracker.Format(p.FutureValue))
	if p.OnTrack {
		fmt.Fprintln(a.stdout, "Status:        on track")
	} else {
		fmt.Fprintln(a.stdout, "Status:        behind")
		if required, ok, err := a.tracker.RequiredContribution(id); err == nil && ok {
			fmt.Fprintf(a.stdout, "Required:      %s per month\n", a.tracker.Format(required))
		}
	}

	for _, m := range p.Milestones {
		if m.Reached {
			fmt.Fprintf(a.stdout, "Milestone %3.0f%%: %s in %s\n", m.Percent, a.tracker.Format(m.Amount), m.Month.YearMonth())
		} else {
			fmt.Fprintf(a.stdout, "Milestone %3.0f%%: %s not reached\n", m.Percent, a.tracker.Format(m.Amount))
		}
	}

	if *points {
		tw := newTable(a.stdout)
		fmt.Fprintln(tw, "MONTH\tBALANCE")
		for _, pt := range p.Points {
			fmt.Fprintf(tw, "%s\t%s\n", pt.Month.YearMonth(), a.tracker.Format(pt.Balance))
		}
		return tw.Flush()
	}
	return nil
}

func (a *app) goalContribute(args []string) error {
	fs := a.flagSet("goal contribute")
	amount := fs.Float64("amount", 0, "contribution amount")
	var date dateFlag
	fs.Var(&date, "date", "contribution date (default today)")
	id, err := withID(fs, args)
	if err != nil {
		return err
	}

	goal, err := a.tracker.AddExtraContribution(id, *amount, date.date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s to %s\n", a.tracker.Format(*amount), goal.Name)
	return nil
}

func (a *app) goalUpdate(args []string) error {
	g, fs := a.newGoalFlags("goal update")
	id, err := withID(fs, args)
	if err != nil {
		return err
	}

	set := visited(fs)
	var patch models.SavingsGoalPatch
	if set["name"] {
		patch.Name = &g.name
	}
	if set["target"] {
		patch.TargetAmount = &g.target
	}
	if set["deadline"] {
		patch.Deadline = &g.deadline.date
	}
	if set["start"] {
		patch.StartingBalance = &g.start
	}
	if set["monthly"] {
		patch.MonthlyContribution = &g.monthly
	}
	if set["rate"] {
		patch.InterestRate = &g.rate
	}
	if set["compounding"] {
		freq := models.CompoundingFrequency(g.compounding)
		patch.CompoundingFrequency = &freq
	}
	if len(set) == 0 {
		return fmt.Errorf("goal update: nothing to change")
	}

	goal, err := a.tracker.UpdateGoal(id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated goal %s\n", goal.Name)
	return nil
}

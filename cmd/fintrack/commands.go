package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/models"
	"fintrack/internal/services/assistant"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/storage"
)

func (a *app) summaryCmd(args []string) error {
	fs := a.flagSet("summary")
	compare := fs.String("compare", "", "compare a period with the "+metrics.ComparePrevious+" one or the same one last "+metrics.CompareYear)
	var from, to dateFlag
	fs.Var(&from, "from", "period start for --compare")
	fs.Var(&to, "to", "period end for --compare (default today)")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	if *compare != "" {
		end := to.date
		if end.IsZero() {
			end = a.tracker.Today()
		}
		start := from.date
		if start.IsZero() {
			start = models.NewDate(end.Year(), end.Month(), 1)
		}
		return a.printComparison(start, end, *compare)
	}

	s, err := a.tracker.Summary()
	if err != nil {
		return err
	}

	m := s.Metrics
	fmt.Fprintf(a.stdout, "Income:       %s\n", a.tracker.Format(m.TotalIncome))
	fmt.Fprintf(a.stdout, "Expenses:     %s\n", a.tracker.Format(m.TotalExpenses))
	fmt.Fprintf(a.stdout, "Net savings:  %s (%.1f%%)\n", a.tracker.Format(m.NetSavings), m.SavingsRate)
	fmt.Fprintf(a.stdout, "Lent out:     %s\n", a.tracker.Format(s.LentOut))
	fmt.Fprintf(a.stdout, "Owed:         %s\n", a.tracker.Format(s.Owed))
	fmt.Fprintf(a.stdout, "Monthly EMI:  %s\n", a.tracker.Format(s.MonthlyEMI))
	fmt.Fprintf(a.stdout, "Scheduled:    %d\n", s.ScheduledCount)

	if len(m.TrendLabels) > 0 {
		fmt.Fprintln(a.stdout, "\nMonthly trend:")
		tw := newTable(a.stdout)
		fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSES\tNET")
		for i, label := range m.TrendLabels {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", label, a.tracker.Format(m.IncomeTrend[i]),
				a.tracker.Format(m.ExpensesTrend[i]), a.tracker.Format(m.SavingsTrend[i]))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(a.stdout, "\nSpending by category:")
		for _, c := range s.Categories {
			fmt.Fprintf(a.stdout, "  %-20s %s (%.1f%%)\n", c.Category, a.tracker.Format(c.Amount), c.Percentage)
		}
	}

	if len(s.Goals) > 0 {
		fmt.Fprintln(a.stdout, "\nGoals:")
		for _, g := range s.Goals {
			fmt.Fprintf(a.stdout, "  %-20s %5.1f%% of %s by %s\n", g.Name, g.Progress, a.tracker.Format(g.TargetAmount), g.Deadline)
		}
	}

	if len(s.UpcomingBills) > 0 {
		fmt.Fprintln(a.stdout, "\nUpcoming:")
		for _, u := range s.UpcomingBills {
			fmt.Fprintf(a.stdout, "  %s  %-20s %s\n", u.Date, u.Name, a.tracker.Format(u.Amount))
		}
	}
	return nil
}

func (a *app) printComparison(start, end models.Date, kind string) error {
	cmp, err := a.tracker.Comparison(start, end, kind)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Period %s to %s compared with the %s period\n", start, end, kind)
	if !cmp.HasData {
		fmt.Fprintln(a.stdout, "No transactions in the comparison period.")
		return nil
	}
	fmt.Fprintf(a.stdout, "Income:       %s (%+.1f%%)\n", a.tracker.Format(cmp.Current.TotalIncome), cmp.IncomeChange)
	fmt.Fprintf(a.stdout, "Expenses:     %s (%+.1f%%)\n", a.tracker.Format(cmp.Current.TotalExpenses), cmp.ExpensesChange)
	fmt.Fprintf(a.stdout, "Net savings:  %s (%+.1f%%)\n", a.tracker.Format(cmp.Current.NetSavings), cmp.SavingsChange)
	fmt.Fprintf(a.stdout, "Savings rate: %.1f%% (%+.1f pp)\n", cmp.Current.SavingsRate, cmp.SavingsRateChange)
	return nil
}

func (a *app) prefsCmd(args []string) error {
	verb, rest, err := subcommand("prefs", args, "show", "set")
	if err != nil {
		return err
	}

	prefs, err := a.tracker.Preferences()
	if err != nil {
		return err
	}

	if verb == "set" {
		f := &prefs.Currency
		fs := a.flagSet("prefs set")
		fs.StringVar(&f.Code, "code", f.Code, "ISO currency code")
		fs.StringVar(&f.Symbol, "symbol", f.Symbol, "currency symbol")
		placement := fs.String("placement", string(f.Placement), "symbol before or after the amount")
		fs.IntVar(&f.Decimals, "decimals", f.Decimals, "decimal places")
		grouping := fs.String("grouping", string(f.Grouping), "standard, indian or none")
		fs.StringVar(&f.ThousandSeparator, "thousand", f.ThousandSeparator, "thousands separator")
		fs.StringVar(&f.DecimalSeparator, "decimal", f.DecimalSeparator, "decimal separator")
		fs.StringVar(&prefs.Language, "language", prefs.Language, "language code")
		if err := parseNoArgs(fs, rest); err != nil {
			return err
		}
		f.Placement = models.SymbolPlacement(*placement)
		f.Grouping = models.Grouping(*grouping)

		if err := a.tracker.SetPreferences(prefs); err != nil {
			return err
		}
	} else if err := parseNoArgs(a.flagSet("prefs show"), rest); err != nil {
		return err
	}

	f := prefs.Currency
	fmt.Fprintf(a.stdout, "Currency: %s (%s, %s, %d decimals, %s grouping)\n", f.Code, f.Symbol, f.Placement, f.Decimals, f.Grouping)
	fmt.Fprintf(a.stdout, "Language: %s\n", prefs.Language)
	fmt.Fprintf(a.stdout, "Example:  %s\n", a.tracker.Format(1234567.891))
	return nil
}

// watchCmd logs due scheduled transactions on a cron schedule until interrupted
func (a *app) watchCmd(args []string) error {
	fs := a.flagSet("watch")
	schedule := fs.String("schedule", a.cfg.WatchSchedule, "cron spec or descriptor such as @hourly")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.watch(ctx, *schedule)
}

func (a *app) watch(ctx context.Context, schedule string) error {
	runOnce := func() {
		entries, expired, err := a.tracker.LogDue()
		if err != nil {
			a.log.WithError(err).Error("Scheduled catch-up failed")
			return
		}
		a.log.WithField("entries", len(entries)).WithField("expired", len(expired)).Info("Scheduled catch-up finished")
	}

	c := cron.New(cron.WithLogger(cron.PrintfLogger(a.log)))
	if _, err := c.AddFunc(schedule, runOnce); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	a.log.WithField("schedule", schedule).Info("Watching scheduled transactions")
	runOnce()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info("Watch stopped")
	return nil
}

func (a *app) askCmd(args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("usage: fintrack ask QUESTION...")
	}

	summary, err := a.tracker.Summary()
	if err != nil {
		return err
	}

	client := assistant.New(a.cfg.AIAPIKey, a.cfg.AIBaseURL, a.cfg.AIModel, a.log)
	reply := client.Reply(context.Background(), question, summary, a.tracker.Today(), a.tracker.Format)
	fmt.Fprintln(a.stdout, reply)
	return nil
}

func (a *app) ratesCmd(args []string) error {
	fs := a.flagSet("rates")
	from := fs.String("from", "", "convert from this currency")
	to := fs.String("to", "", "convert to this currency")
	amount := fs.Float64("amount", 1, "amount to convert")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rates, err := currency.NewRatesClient(a.cfg.RatesURL, a.log).Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	if *from != "" || *to != "" {
		src, dst := strings.ToUpper(*from), strings.ToUpper(*to)
		if src == "" {
			src = currency.BaseCurrency
		}
		if dst == "" {
			dst = currency.BaseCurrency
		}
		converted, err := rates.Convert(*amount, src, dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%.2f %s = %.4f %s (rates of %s)\n", *amount, src, converted, dst, rates.Date)
		return nil
	}

	fmt.Fprintf(a.stdout, "Reference rates of %s, 1 %s =\n", rates.Date, currency.BaseCurrency)
	tw := newTable(a.stdout)
	for _, code := range rates.Currencies() {
		rate, _ := rates.Rate(code)
		fmt.Fprintf(tw, "%s\t%s\n", code, rate.String())
	}
	return tw.Flush()
}

func (a *app) encryptCmd(args []string) error {
	if err := parseNoArgs(a.flagSet("encrypt"), args); err != nil {
		return err
	}
	if a.store.IsEncrypted() {
		return fmt.Errorf("data directory is already encrypted")
	}

	password, err := a.password("New password: ")
	if err != nil {
		return err
	}
	if len(password) < storage.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", storage.MinPasswordLength)
	}
	if err := a.store.EnableEncryption(password); err != nil {
		return err
	}
	a.log.WithField("data_dir", a.store.BaseDir()).Info("Encryption enabled")
	fmt.Fprintln(a.stdout, "Data directory encrypted.")
	return nil
}

func (a *app) decryptCmd(args []string) error {
	if err := parseNoArgs(a.flagSet("decrypt"), args); err != nil {
		return err
	}
	if !a.store.IsEncrypted() {
		return fmt.Errorf("data directory is not encrypted")
	}

	password, err := a.password("Password: ")
	if err != nil {
		return err
	}
	if err := a.store.DisableEncryption(password); err != nil {
		return err
	}
	a.log.WithField("data_dir", a.store.BaseDir()).Info("Encryption disabled")
	fmt.Fprintln(a.stdout, "Data directory decrypted.")
	return nil
}

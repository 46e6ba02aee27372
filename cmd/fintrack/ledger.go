package main

import (
	"fmt"
	"os"

	"fintrack/internal/models"
	"fintrack/internal/services/tracker"
)

func (a *app) txnCmd(args []string) error {
	verb, rest, err := subcommand("txn", args, "add", "list", "delete")
	if err != nil {
		return err
	}

	switch verb {
	case "add":
		return a.txnAdd(rest)
	case "list":
		return a.txnList(rest)
	default:
		id, err := withID(a.flagSet("txn delete"), rest)
		if err != nil {
			return err
		}
		if err := a.tracker.DeleteTransaction(id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted transaction %s\n", id)
		return nil
	}
}

func (a *app) txnAdd(args []string) error {
	fs := a.flagSet("txn add")
	amount := fs.Float64("amount", 0, "amount (positive)")
	txType := fs.String("type", string(models.Expense), "income or expense")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "category")
	var date dateFlag
	fs.Var(&date, "date", "date (default today)")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	tx, err := a.tracker.AddTransaction(models.Transaction{
		Date:        date.date,
		Amount:      *amount,
		Description: *desc,
		Category:    *category,
		Type:        models.TransactionType(*txType),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s %s on %s (%s)\n", tx.Type, a.tracker.Format(tx.Amount), tx.Date, tx.ID)
	return nil
}

func (a *app) txnList(args []string) error {
	fs := a.flagSet("txn list")
	var from, to dateFlag
	fs.Var(&from, "from", "first date (inclusive)")
	fs.Var(&to, "to", "last date (inclusive)")
	txType := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category")
	search := fs.String("search", "", "text in the description")
	limit := fs.Int("limit", 50, "maximum rows, 0 for all")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	txns, err := a.tracker.Transactions(tracker.Filter{
		Start:    from.date,
		End:      to.date,
		Type:     models.TransactionType(*txType),
		Category: *category,
		Search:   *search,
	})
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(a.stdout, "No transactions.")
		return nil
	}
	if *limit > 0 {
		txns = models.NewTransactionSet(txns).Paginate(1, *limit).Transactions
	}

	tw := newTable(a.stdout)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tSOURCE")
	for _, t := range txns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Type, a.tracker.Format(t.Amount), t.Category, t.Description, t.Source)
	}
	return tw.Flush()
}

func (a *app) importCmd(args []string) error {
	fs := a.flagSet("import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: fintrack import FILE.csv")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.tracker.ImportTransactions(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Imported %d transactions (%d duplicates, %d transfers, %d skipped)\n",
		len(result.Transactions), result.Duplicates, result.Transfers, result.Skipped)
	return nil
}

func (a *app) exportCmd(args []string) error {
	fs := a.flagSet("export")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch fs.NArg() {
	case 0:
		return a.tracker.ExportTransactions(a.stdout)
	case 1:
		f, err := os.Create(fs.Arg(0))
		if err != nil {
			return err
		}
		if err := a.tracker.ExportTransactions(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Exported ledger to %s\n", fs.Arg(0))
		return nil
	default:
		return fmt.Errorf("usage: fintrack export [FILE.csv]")
	}
}

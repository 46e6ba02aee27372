package tracker

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/dataloader"
)

func transactionID(tx models.Transaction) string { return tx.ID }

// Filter narrows a ledger listing. Zero fields match everything.
type Filter struct {
	Start    models.Date
	End      models.Date
	Type     models.TransactionType
	Category string
	Search   string
}

// Transactions returns the ledger entries matching f, newest first
func (t *Tracker) Transactions(f Filter) ([]models.Transaction, error) {
	all, err := t.repo.Transactions()
	if err != nil {
		return nil, err
	}

	set := models.NewTransactionSet(all).FilterByDateRange(f.Start, f.End)
	if f.Type != "" {
		set = set.FilterByType(f.Type)
	}
	if f.Category != "" {
		set = set.FilterByCategory(f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		set = set.FilterBySearch(s)
	}

	result := set.SortByDateDesc().Transactions
	if result == nil {
		result = []models.Transaction{}
	}
	return result, nil
}

// AddTransaction records a manual ledger entry
func (t *Tracker) AddTransaction(tx models.Transaction) (models.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = t.Today()
	}
	if tx.Source == "" {
		tx.Source = models.SourceManual
	}
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	added, err := t.appendTransactions(tx)
	if err != nil {
		return models.Transaction{}, err
	}

	t.entry(logrus.Fields{"transaction_id": added[0].ID, "type": tx.Type, "amount": tx.Amount}).Info("Transaction added")
	return added[0], nil
}

// DeleteTransaction removes the ledger entry with id
func (t *Tracker) DeleteTransaction(id string) error {
	err := t.repo.UpdateTransactions(func(all []models.Transaction) ([]models.Transaction, error) {
		i := indexOf(all, id, transactionID)
		if i < 0 {
			return nil, notFound("transaction", id)
		}
		return slices.Delete(all, i, i+1), nil
	})
	if err != nil {
		return err
	}

	t.entry(logrus.Fields{"transaction_id": id}).Info("Transaction deleted")
	return nil
}

// ImportTransactions reads a bank CSV export into the ledger, skipping
// rows already present
func (t *Tracker) ImportTransactions(r io.Reader) (*dataloader.Result, error) {
	var result *dataloader.Result
	err := t.repo.UpdateTransactions(func(all []models.Transaction) ([]models.Transaction, error) {
		res, err := dataloader.New(t.log).Import(r, all)
		if err != nil {
			return nil, err
		}
		for i := range res.Transactions {
			res.Transactions[i].ID = newID()
		}
		result = res
		return append(all, res.Transactions...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}
	return result, nil
}

// ExportTransactions writes the whole ledger as CSV
func (t *Tracker) ExportTransactions(w io.Writer) error {
	all, err := t.repo.Transactions()
	if err != nil {
		return err
	}
	return dataloader.Export(w, all)
}

// appendTransactions assigns ids and hashes to entries and appends them to
// the ledger, returning the stored entries
func (t *Tracker) appendTransactions(entries ...models.Transaction) ([]models.Transaction, error) {
	stored := make([]models.Transaction, len(entries))
	for i, tx := range entries {
		tx.ID = newID()
		if tx.Hash == "" {
			tx.Hash = tx.ComputeHash()
		}
		stored[i] = tx
	}

	err := t.repo.UpdateTransactions(func(all []models.Transaction) ([]models.Transaction, error) {
		return append(all, stored...), nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// describeEntries names entries for an error message a user can act on
func describeEntries(entries []models.Transaction) string {
	parts := make([]string, len(entries))
	for i, tx := range entries {
		parts[i] = fmt.Sprintf("%s %s %.2f on %s", tx.Type, tx.Description, tx.Amount, tx.Date)
	}
	return strings.Join(parts, "; ")
}

// Package records loads and saves a user's collections as whole JSON
// snapshots through a key/value store.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"fintrack/internal/models"
)

// Store is the persistence port: opaque blobs by key. A key that was never
// written must report an error matching fs.ErrNotExist.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// Collection names one of a user's stored lists
type Collection string

const (
	Goals       Collection = "goals"
	Loans       Collection = "loans"
	Scheduled   Collection = "scheduled"
	Ledger      Collection = "ledger"
	Preferences Collection = "preferences"
)

// Collections lists every collection a user can have
var Collections = []Collection{Goals, Loans, Scheduled, Ledger, Preferences}

// Key returns the store key for user's collection
func Key(user string, c Collection) string {
	return user + "/" + string(c)
}

// Repository reads and writes one user's collections.
// Update methods hold the lock across load, change and save.
type Repository struct {
	store Store
	user  string
	mu    sync.RWMutex
}

// NewRepository creates a repository for user over store
func NewRepository(store Store, user string) *Repository {
	return &Repository{store: store, user: user}
}

// User returns the user the repository belongs to
func (r *Repository) User() string {
	return r.user
}

// Goals returns the user's savings goals
func (r *Repository) Goals() ([]models.SavingsGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadGoals()
}

// UpdateGoals replaces the goals with the result of fn
func (r *Repository) UpdateGoals(fn func([]models.SavingsGoal) ([]models.SavingsGoal, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	goals, err := r.loadGoals()
	if err != nil {
		return err
	}
	goals, err = fn(goals)
	if err != nil {
		return err
	}
	return save(r.store, Key(r.user, Goals), goals)
}

func (r *Repository) loadGoals() ([]models.SavingsGoal, error) {
	goals, err := loadList[models.SavingsGoal](r.store, Key(r.user, Goals))
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].ExtraContributions == nil {
			goals[i].ExtraContributions = []models.ExtraContribution{}
		}
	}
	return goals, nil
}

// Loans returns the user's loans
func (r *Repository) Loans() ([]models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadLoans()
}

// UpdateLoans replaces the loans with the result of fn
func (r *Repository) UpdateLoans(fn func([]models.Loan) ([]models.Loan, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loans, err := r.loadLoans()
	if err != nil {
		return err
	}
	loans, err = fn(loans)
	if err != nil {
		return err
	}
	return save(r.store, Key(r.user, Loans), loans)
}

func (r *Repository) loadLoans() ([]models.Loan, error) {
	loans, err := loadList[models.Loan](r.store, Key(r.user, Loans))
	if err != nil {
		return nil, err
	}
	for i := range loans {
		if loans[i].Repayments == nil {
			loans[i].Repayments = []models.Repayment{}
		}
	}
	return loans, nil
}

// Scheduled returns the user's scheduled transactions
func (r *Repository) Scheduled() ([]models.ScheduledTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return loadList[models.ScheduledTransaction](r.store, Key(r.user, Scheduled))
}

// UpdateScheduled replaces the scheduled transactions with the result of fn
func (r *Repository) UpdateScheduled(fn func([]models.ScheduledTransaction) ([]models.ScheduledTransaction, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := loadList[models.ScheduledTransaction](r.store, Key(r.user, Scheduled))
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return save(r.store, Key(r.user, Scheduled), items)
}

// Transactions returns the user's ledger
func (r *Repository) Transactions() ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return loadList[models.Transaction](r.store, Key(r.user, Ledger))
}

// UpdateTransactions replaces the ledger with the result of fn
func (r *Repository) UpdateTransactions(fn func([]models.Transaction) ([]models.Transaction, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns, err := loadList[models.Transaction](r.store, Key(r.user, Ledger))
	if err != nil {
		return err
	}
	txns, err = fn(txns)
	if err != nil {
		return err
	}
	return save(r.store, Key(r.user, Ledger), txns)
}

// Preferences returns the user's display preferences, or the defaults when
// none were saved
func (r *Repository) Preferences() (models.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs := models.DefaultPreferences()
	found, err := load(r.store, Key(r.user, Preferences), &prefs)
	if err != nil {
		return models.DefaultPreferences(), err
	}
	if !found || prefs.Currency.Code == "" {
		prefs.Currency = models.DefaultPreferences().Currency
	}
	return prefs, nil
}

// SavePreferences stores the user's display preferences
func (r *Repository) SavePreferences(prefs models.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return save(r.store, Key(r.user, Preferences), prefs)
}

// loadList reads a JSON array. A missing key is an empty list.
func loadList[T any](store Store, key string) ([]T, error) {
	var items []T
	if _, err := load(store, key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// load decodes key into v and reports whether the key existed
func load(store Store, key string, v any) (bool, error) {
	data, err := store.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

func save(store Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Write(key, data)
}

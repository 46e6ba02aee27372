package records

import (
	"errors"
	"strings"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/services/storage"
)

func TestMissingCollectionsLoadEmpty(t *testing.T) {
	repo := NewRepository(storage.NewMemory(), "alice")

	goals, err := repo.Goals()
	if err != nil || goals == nil || len(goals) != 0 {
		t.Errorf("Goals() = %v, %v; want empty non-nil slice", goals, err)
	}
	loans, err := repo.Loans()
	if err != nil || loans == nil || len(loans) != 0 {
		t.Errorf("Loans() = %v, %v; want empty non-nil slice", loans, err)
	}
	items, err := repo.Scheduled()
	if err != nil || items == nil {
		t.Errorf("Scheduled() = %v, %v", items, err)
	}
	txns, err := repo.Transactions()
	if err != nil || txns == nil {
		t.Errorf("Transactions() = %v, %v", txns, err)
	}

	prefs, err := repo.Preferences()
	if err != nil {
		t.Fatalf("Preferences() failed: %v", err)
	}
	if prefs != models.DefaultPreferences() {
		t.Errorf("Preferences() = %+v, want defaults", prefs)
	}
}

func TestNilSlicesNormalisedOnLoad(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Write("alice/goals", []byte(`[{"id":"g1","name":"Trip","extra_contributions":null}]`))
	_ = store.Write("alice/loans", []byte(`[{"id":"l1","person":"Bob"}]`))
	repo := NewRepository(store, "alice")

	goals, _ := repo.Goals()
	if len(goals) != 1 || goals[0].ExtraContributions == nil {
		t.Errorf("ExtraContributions should be an empty slice: %+v", goals)
	}
	loans, _ := repo.Loans()
	if len(loans) != 1 || loans[0].Repayments == nil {
		t.Errorf("Repayments should be an empty slice: %+v", loans)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := storage.NewMemory()
	repo := NewRepository(store, "alice")

	err := repo.UpdateGoals(func(goals []models.SavingsGoal) ([]models.SavingsGoal, error) {
		return append(goals, models.SavingsGoal{ID: "g1", Name: "House", TargetAmount: 50000}), nil
	})
	if err != nil {
		t.Fatalf("UpdateGoals failed: %v", err)
	}

	// Users are isolated by key
	other := NewRepository(store, "bob")
	if goals, _ := other.Goals(); len(goals) != 0 {
		t.Errorf("bob should have no goals, got %v", goals)
	}

	goals, err := repo.Goals()
	if err != nil || len(goals) != 1 || goals[0].Name != "House" {
		t.Errorf("Goals() = %+v, %v", goals, err)
	}

	raw, _ := store.Read(Key("alice", Goals))
	if !strings.Contains(string(raw), `"target_amount": 50000`) {
		t.Errorf("stored snapshot = %s", raw)
	}
}

func TestUpdateErrorLeavesDataUnchanged(t *testing.T) {
	repo := NewRepository(storage.NewMemory(), "alice")
	_ = repo.UpdateLoans(func(loans []models.Loan) ([]models.Loan, error) {
		return append(loans, models.Loan{ID: "l1", Person: "Bob"}), nil
	})

	boom := errors.New("boom")
	err := repo.UpdateLoans(func(loans []models.Loan) ([]models.Loan, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}

	loans, _ := repo.Loans()
	if len(loans) != 1 {
		t.Errorf("loans changed after failed update: %v", loans)
	}
}

func TestCorruptSnapshot(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Write("alice/scheduled", []byte(`{not json`))
	repo := NewRepository(store, "alice")

	if _, err := repo.Scheduled(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	repo := NewRepository(storage.NewMemory(), "alice")

	prefs := models.DefaultPreferences()
	prefs.Currency.Code = "INR"
	prefs.Currency.Symbol = "₹"
	prefs.Currency.Grouping = models.GroupingIndian
	if err := repo.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}

	got, err := repo.Preferences()
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if got != prefs {
		t.Errorf("Preferences() = %+v, want %+v", got, prefs)
	}
}

func TestFileStoreBackend(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}
	repo := NewRepository(store, "alice")

	err = repo.UpdateTransactions(func(txns []models.Transaction) ([]models.Transaction, error) {
		return append(txns, models.Transaction{ID: "t1", Amount: 12.5, Type: models.Expense}), nil
	})
	if err != nil {
		t.Fatalf("UpdateTransactions failed: %v", err)
	}

	txns, err := NewRepository(store, "alice").Transactions()
	if err != nil || len(txns) != 1 || txns[0].Amount != 12.5 {
		t.Errorf("Transactions() = %+v, %v", txns, err)
	}
}

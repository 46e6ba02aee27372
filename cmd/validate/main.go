// Package main provides a CLI tool for validating stored tracker data.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/records"
	"fintrack/internal/services/storage"
)

// Store is the storage the validator reads
type Store interface {
	records.Store
	Keys() ([]string, error)
}

type check struct {
	name string
	run  func(repo *records.Repository) []string
}

var checks = []check{
	{name: "goals", run: checkGoals},
	{name: "loans", run: checkLoans},
	{name: "scheduled", run: checkScheduled},
	{name: "ledger", run: checkLedger},
	{name: "preferences", run: checkPreferences},
}

type result struct {
	user     string
	check    string
	problems []string
}

func main() {
	dataDir := flag.String("data", "", "Data directory (default from FINTRACK_DATA_DIR)")
	user := flag.String("user", "", "Only validate this user")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDirectory = *dataDir
	}

	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if store.IsEncrypted() {
		if err := store.Unlock(cfg.Password); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot unlock %s (set %sPASSWORD): %v\n", cfg.DataDirectory, config.EnvPrefix, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Validating data in %s\n", cfg.DataDirectory)
	_, failed, err := validate(store, *user, os.Stdout, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// validate runs every check for every user found in store and prints one
// line per failed check, or per check when verbose
func validate(store Store, only string, w io.Writer, verbose bool) (passed, failed int, err error) {
	users, err := usersIn(store)
	if err != nil {
		return 0, 0, err
	}
	if only != "" {
		users = []string{only}
	}

	fmt.Fprintf(w, "Checking %d users...\n\n", len(users))

	for _, user := range users {
		repo := records.NewRepository(store, user)
		for _, c := range checks {
			r := result{user: user, check: c.name, problems: c.run(repo)}
			if len(r.problems) > 0 {
				failed++
				fmt.Fprintf(w, "FAIL %s %s\n", r.user, r.check)
				for _, p := range r.problems {
					fmt.Fprintf(w, "     %s\n", p)
				}
			} else {
				passed++
				if verbose {
					fmt.Fprintf(w, "PASS %s %s\n", r.user, r.check)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n========================================\n")
	fmt.Fprintf(w, "Results: %d passed, %d failed\n", passed, failed)
	return passed, failed, nil
}

// usersIn lists the users that have at least one stored collection
func usersIn(store Store) ([]string, error) {
	keys, err := store.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored data: %w", err)
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		user, _, ok := strings.Cut(key, "/")
		if ok && user != "" {
			seen[user] = true
		}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func checkGoals(repo *records.Repository) []string {
	goals, err := repo.Goals()
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	ids := make(map[string]bool)
	for _, g := range goals {
		problems = append(problems, uniqueID(ids, "goal", g.ID)...)
		if err := g.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		for _, e := range g.ExtraContributions {
			if !(e.Amount > 0) || e.Date.IsZero() {
				problems = append(problems, fmt.Sprintf("goal %q: extra contribution %s needs a positive amount and a date", g.Name, e.ID))
			}
		}
	}
	return problems
}

func checkLoans(repo *records.Repository) []string {
	loans, err := repo.Loans()
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	ids := make(map[string]bool)
	for _, l := range loans {
		problems = append(problems, uniqueID(ids, "loan", l.ID)...)
		if err := l.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		if l.OutstandingAmount < 0 {
			problems = append(problems, fmt.Sprintf("loan with %s: outstanding amount is negative", l.Person))
		}
		if want := l.ExpectedOutstanding(); math.Abs(l.OutstandingAmount-want) > 0.005 {
			problems = append(problems, fmt.Sprintf("loan with %s: outstanding %.2f, total minus repayments is %.2f",
				l.Person, l.OutstandingAmount, want))
		}
		for _, r := range l.Repayments {
			if !(r.Amount > 0) {
				problems = append(problems, fmt.Sprintf("loan with %s: repayment %s is not positive", l.Person, r.ID))
			}
		}
	}
	return problems
}

func checkScheduled(repo *records.Repository) []string {
	items, err := repo.Scheduled()
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	ids := make(map[string]bool)
	for _, st := range items {
		problems = append(problems, uniqueID(ids, "scheduled transaction", st.ID)...)
		if err := st.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return problems
}

func checkLedger(repo *records.Repository) []string {
	txns, err := repo.Transactions()
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	ids := make(map[string]bool)
	for _, t := range txns {
		problems = append(problems, uniqueID(ids, "transaction", t.ID)...)
		if err := t.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("transaction %s: %v", t.ID, err))
		}
		if t.Hash != "" && t.Hash != t.ComputeHash() {
			problems = append(problems, fmt.Sprintf("transaction %s: content hash does not match", t.ID))
		}
	}
	return problems
}

func checkPreferences(repo *records.Repository) []string {
	prefs, err := repo.Preferences()
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	f := prefs.Currency
	if f.Decimals < 0 || f.Decimals > currency.MaxDecimals {
		problems = append(problems, fmt.Sprintf("currency decimals %d out of range", f.Decimals))
	}
	if f.Placement != models.SymbolBefore && f.Placement != models.SymbolAfter {
		problems = append(problems, fmt.Sprintf("unknown symbol placement %q", f.Placement))
	}
	switch f.Grouping {
	case models.GroupingStandard, models.GroupingIndian, models.GroupingNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown grouping %q", f.Grouping))
	}
	return problems
}

func uniqueID(seen map[string]bool, kind, id string) []string {
	if id == "" {
		return []string{fmt.Sprintf("%s without an id", kind)}
	}
	if seen[id] {
		return []string{fmt.Sprintf("duplicate %s id %s", kind, id)}
	}
	seen[id] = true
	return nil
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/services/assistant"
	"fintrack/internal/testutil"
)

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

// setupCLI points the CLI at a fresh data directory with today pinned to 2024-03-10
func setupCLI(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	testutil.SetTestEnv(t, dataDir)
	t.Setenv("FINTRACK_PASSWORD", "")
	t.Setenv("FINTRACK_LOG_LEVEL", "error")

	clock = func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { clock = time.Now })
	return dataDir
}

// runCLI runs one command and returns its stdout, stderr and exit code
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun fails the test unless the command succeeds
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := runCLI(t, args...)
	if code != 0 {
		t.Fatalf("fintrack %s exited %d: %s", strings.Join(args, " "), code, errOut)
	}
	return out
}

func idFrom(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in output %q", out)
	}
	return m[1]
}

func TestUsageAndVersion(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "help")
	testutil.AssertOutput(t, out).
		Contains("Usage: fintrack <command>").
		ContainsAll("goal add|list", "loan add|list", "scheduled add|list", "watch", "version")

	testutil.AssertOutput(t, mustRun(t, "version")).Matches(`^fintrack \S+`)

	_, errOut, code := runCLI(t, "frobnicate")
	if code != 2 {
		t.Errorf("unknown command exit code = %d, want 2", code)
	}
	testutil.AssertOutput(t, errOut).Contains(`unknown command "frobnicate"`)
}

func TestGoalCommands(t *testing.T) {
	setupCLI(t)

	id := idFrom(t, mustRun(t, "goal", "add", "--name", "Emergency fund", "--target", "5000",
		"--deadline", "2024-12-31", "--start", "1000", "--monthly", "200"))

	testutil.AssertOutput(t, mustRun(t, "goal", "list")).
		Contains("Emergency fund").
		Contains("$5,000.00").
		Lines(2)

	testutil.AssertOutput(t, mustRun(t, "goal", "project", id)).
		Contains("Current value: $1,000.00 (20.0%)").
		Contains("Future value:  $3,000.00").
		Contains("Status:        behind").
		Contains("Required:      $400.00 per month").
		Contains("Milestone  25%: $1,250.00 in 2024-05")

	mustRun(t, "goal", "contribute", id, "--amount", "2000", "--date", "2024-06-15")
	testutil.AssertOutput(t, mustRun(t, "goal", "project", id, "--points")).
		Contains("Future value:  $5,000.00").
		Contains("Status:        on track").
		Contains("2024-12")

	mustRun(t, "goal", "update", id, "--name", "Rainy day")
	testutil.AssertOutput(t, mustRun(t, "goal", "list")).Contains("Rainy day").NotContains("Emergency fund")

	_, errOut, code := runCLI(t, "goal", "update", id)
	if code != 1 || !strings.Contains(errOut, "nothing to change") {
		t.Errorf("empty update = %d %q", code, errOut)
	}

	mustRun(t, "goal", "delete", id)
	_, errOut, code = runCLI(t, "goal", "project", id)
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("project after delete = %d %q", code, errOut)
	}
	testutil.AssertOutput(t, mustRun(t, "goal", "list")).Contains("No savings goals.")
}

func TestGoalValidationErrors(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing name", []string{"goal", "add", "--target", "100", "--deadline", "2025-01-01"}, "name is required"},
		{"bad date", []string{"goal", "add", "--name", "x", "--deadline", "31/12/2024"}, "invalid value"},
		{"bad compounding", []string{"goal", "add", "--name", "x", "--deadline", "2025-01-01", "--compounding", "hourly"}, "unknown compounding"},
		{"unknown verb", []string{"goal", "frob"}, "unknown goal command"},
		{"missing id", []string{"goal", "project"}, "missing id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runCLI(t, tt.args...)
			if code == 0 {
				t.Fatal("expected failure")
			}
			testutil.AssertOutput(t, errOut).Contains(tt.want)
		})
	}
}

func TestLoanCommands(t *testing.T) {
	setupCLI(t)

	id := idFrom(t, mustRun(t, "loan", "add", "--type", "borrowed", "--person", "Bank", "--amount", "1200",
		"--date", "2024-01-01", "--due", "2025-01-01", "--schedule", "monthly"))

	testutil.AssertOutput(t, mustRun(t, "loan", "emi", id)).
		Contains("Months:          12").
		Contains("Monthly payment: $100.00").
		Contains("Total interest:  $0.00")

	testutil.AssertOutput(t, mustRun(t, "loan", "schedule", id)).
		Contains("2024-02-01").
		Lines(13)

	testutil.AssertOutput(t, mustRun(t, "loan", "repay", id, "--amount", "200")).
		Contains("Recorded $200.00; outstanding $1,000.00")

	testutil.AssertOutput(t, mustRun(t, "txn", "list")).
		Contains("Loan repayment to Bank").
		Contains("2024-03-10").
		Contains("loan")

	testutil.AssertOutput(t, mustRun(t, "loan", "list")).Contains("$1,000.00").Contains("open")
	mustRun(t, "loan", "repay", id, "--amount", "5000")
	testutil.AssertOutput(t, mustRun(t, "loan", "list")).Contains("settled")

	testutil.AssertOutput(t, mustRun(t, "calc", "--amount", "10000", "--rate", "5", "--years", "5")).
		Contains("Months:          60").
		Contains("Monthly payment: $188.71")

	_, errOut, code := runCLI(t, "calc", "--amount", "10000", "--years", "5")
	if code != 1 || !strings.Contains(errOut, "must all be > 0") {
		t.Errorf("calc without rate = %d %q", code, errOut)
	}
}

func TestScheduledCommands(t *testing.T) {
	setupCLI(t)

	rent := idFrom(t, mustRun(t, "scheduled", "add", "--name", "Rent", "--amount", "1500",
		"--category", "Housing", "--start", "2024-01-01"))
	mustRun(t, "scheduled", "add", "--name", "Gym", "--amount", "40", "--start", "2024-01-15", "--end", "2024-02-15")

	testutil.AssertOutput(t, mustRun(t, "scheduled", "due")).Contains("Rent").Contains("Gym").Lines(3)
	testutil.AssertOutput(t, mustRun(t, "scheduled", "list")).Contains("RRULE:FREQ=MONTHLY")
	testutil.AssertOutput(t, mustRun(t, "scheduled", "rrule", rent)).
		Contains("DTSTART:20240101T000000Z").
		Contains("RRULE:FREQ=MONTHLY;INTERVAL=1")

	testutil.AssertOutput(t, mustRun(t, "scheduled", "log", "--all")).
		Contains("5 entries logged, 1 scheduled transactions expired")

	testutil.AssertOutput(t, mustRun(t, "scheduled", "list")).Contains("2024-04-01").NotContains("Gym")
	testutil.AssertOutput(t, mustRun(t, "scheduled", "log", rent)).
		Contains("Logged Rent $1,500.00 on 2024-04-01").
		Contains("Next due 2024-05-01")

	testutil.AssertOutput(t, mustRun(t, "txn", "list", "--category", "housing")).Lines(5)

	mustRun(t, "scheduled", "delete", rent)
	testutil.AssertOutput(t, mustRun(t, "scheduled", "due")).Contains("Nothing is due.")
}

func TestLedgerImportExport(t *testing.T) {
	dataDir := setupCLI(t)

	mustRun(t, "txn", "add", "--amount", "3000", "--type", "income", "--desc", "Salary", "--date", "2024-03-01")
	mustRun(t, "txn", "add", "--amount", "120.5", "--desc", "Groceries", "--category", "Food", "--date", "2024-03-02")

	csvPath := filepath.Join(dataDir, "bank.csv")
	csvData := "Posted Date,Payee,Debit,Credit\n03/03/2024,Hardware store,60.00,\n03/04/2024,Coffee,4.50,\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0600); err != nil {
		t.Fatal(err)
	}
	testutil.AssertOutput(t, mustRun(t, "import", csvPath)).Contains("Imported 2 transactions (0 duplicates")
	testutil.AssertOutput(t, mustRun(t, "import", csvPath)).Contains("Imported 0 transactions (2 duplicates")

	testutil.AssertOutput(t, mustRun(t, "txn", "list", "--type", "expense", "--limit", "1")).
		Contains("Coffee").
		NotContains("Groceries").
		Lines(2)

	testutil.AssertOutput(t, mustRun(t, "export")).
		Contains("Date,Description,Category,Type,Amount").
		Contains("2024-03-01,Salary,,income,3000.00").
		Lines(5)

	outPath := filepath.Join(dataDir, "ledger.csv")
	mustRun(t, "export", outPath)
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	testutil.AssertOutput(t, string(data)).Contains("Groceries")

	testutil.AssertOutput(t, mustRun(t, "summary")).
		Contains("Income:       $3,000.00").
		Contains("Expenses:     $185.00").
		Contains("Food").
		Contains("2024-03")

	testutil.AssertOutput(t, mustRun(t, "summary", "--compare", "previous")).
		Contains("No transactions in the comparison period.")
}

func TestPreferences(t *testing.T) {
	setupCLI(t)

	testutil.AssertOutput(t, mustRun(t, "prefs", "show")).Contains("Example:  $1,234,567.89")
	testutil.AssertOutput(t, mustRun(t, "prefs", "set", "--code", "EUR", "--symbol", "€", "--placement", "after",
		"--thousand", ".", "--decimal", ",")).
		Contains("Example:  1.234.567,89 €")

	_, errOut, code := runCLI(t, "prefs", "set", "--grouping", "weird")
	if code != 1 || !strings.Contains(errOut, "unknown grouping") {
		t.Errorf("bad grouping = %d %q", code, errOut)
	}
}

func TestAskFallsBackWithoutKey(t *testing.T) {
	setupCLI(t)
	testutil.AssertOutput(t, mustRun(t, "ask", "how", "am", "I", "doing?")).Contains(assistant.FallbackReply)

	_, _, code := runCLI(t, "ask")
	if code != 1 {
		t.Errorf("ask without a question exit code = %d, want 1", code)
	}
}

func TestRates(t *testing.T) {
	setupCLI(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<Cube>
		<Cube time="2024-05-10">
			<Cube currency="USD" rate="1.25"/>
			<Cube currency="JPY" rate="167.75"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`))
	}))
	defer srv.Close()
	t.Setenv("FINTRACK_RATES_URL", srv.URL)

	testutil.AssertOutput(t, mustRun(t, "rates")).
		Contains("Reference rates of 2024-05-10").
		ContainsAll("EUR", "JPY", "USD")

	testutil.AssertOutput(t, mustRun(t, "rates", "--from", "usd", "--amount", "10")).
		Contains("10.00 USD = 8.0000 EUR")

	srv.Close()
	_, errOut, code := runCLI(t, "rates")
	if code != 1 || !strings.Contains(errOut, "failed to fetch exchange rates") {
		t.Errorf("rates with server down = %d %q", code, errOut)
	}
}

func TestEncryptDecrypt(t *testing.T) {
	dataDir := setupCLI(t)
	mustRun(t, "goal", "add", "--name", "Secret stash", "--target", "100", "--deadline", "2025-01-01")

	_, errOut, code := runCLI(t, "encrypt")
	if code != 1 || !strings.Contains(errOut, "FINTRACK_PASSWORD") {
		t.Errorf("encrypt without a password = %d %q", code, errOut)
	}

	t.Setenv("FINTRACK_PASSWORD", "short")
	if _, _, code := runCLI(t, "encrypt"); code != 1 {
		t.Error("short password should be rejected")
	}

	t.Setenv("FINTRACK_PASSWORD", "correct horse battery")
	testutil.AssertOutput(t, mustRun(t, "encrypt")).Contains("Data directory encrypted.")

	raw, err := os.ReadFile(filepath.Join(dataDir, "test-user", "goals.json"))
	if err != nil {
		t.Fatalf("goals file missing: %v", err)
	}
	if !strings.HasPrefix(string(raw), "age-encryption.org") || strings.Contains(string(raw), "Secret stash") {
		t.Error("goals file should be encrypted")
	}
	testutil.AssertOutput(t, mustRun(t, "goal", "list")).Contains("Secret stash")

	t.Setenv("FINTRACK_PASSWORD", "wrong password!")
	if _, _, code := runCLI(t, "goal", "list"); code != 1 {
		t.Error("wrong password should fail to unlock")
	}

	t.Setenv("FINTRACK_PASSWORD", "correct horse battery")
	testutil.AssertOutput(t, mustRun(t, "decrypt")).Contains("Data directory decrypted.")
	raw, _ = os.ReadFile(filepath.Join(dataDir, "test-user", "goals.json"))
	testutil.AssertOutput(t, string(raw)).Contains("Secret stash")
}

func TestWatchRunsCatchUpAndStops(t *testing.T) {
	setupCLI(t)
	mustRun(t, "scheduled", "add", "--name", "Rent", "--amount", "1500", "--start", "2024-02-01")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	var stdout, stderr bytes.Buffer
	a, err := newApp(cfg, strings.NewReader(""), &stdout, &stderr)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}

	if err := a.watch(context.Background(), "not a schedule"); err == nil {
		t.Error("invalid schedule should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.watch(ctx, "@hourly"); err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	// Feb 1 and Mar 1 were logged by the initial catch-up
	testutil.AssertOutput(t, mustRun(t, "txn", "list")).Lines(3)
}

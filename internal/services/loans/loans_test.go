package loans

import (
	"math"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/services/calendar"
	"fintrack/internal/testutil"
)

func newLoan(t *testing.T, amount, rate float64, interest models.InterestType, date, due string) models.Loan {
	t.Helper()
	return models.Loan{
		ID:                "loan-1",
		Type:              models.LoanBorrowed,
		Person:            "Alice",
		TotalAmount:       amount,
		OutstandingAmount: amount,
		InterestRate:      rate,
		InterestType:      interest,
		Date:              testutil.Date(t, date),
		DueDate:           testutil.Date(t, due),
		RepaymentSchedule: models.RepaymentMonthly,
		Repayments:        []models.Repayment{},
	}
}

func TestMonthlyPayment(t *testing.T) {
	t.Run("simple interest", func(t *testing.T) {
		loan := newLoan(t, 1000, 10, models.InterestSimple, "2024-01-15", "2025-01-15")

		got := MonthlyPayment(loan)

		if got.Months != 12 {
			t.Fatalf("Months = %d, want 12", got.Months)
		}
		testutil.AssertClose(t, "TotalInterest", got.TotalInterest, 100, 1e-9)
		testutil.AssertClose(t, "MonthlyPayment", got.MonthlyPayment, 1100.0/12, 1e-9)
		testutil.AssertClose(t, "rounded payment", math.Round(got.MonthlyPayment*100)/100, 91.67, 1e-9)
	})

	t.Run("zero rate is straight line", func(t *testing.T) {
		loan := newLoan(t, 1200, 0, models.InterestCompound, "2024-01-01", "2025-01-01")

		got := MonthlyPayment(loan)

		testutil.AssertClose(t, "MonthlyPayment", got.MonthlyPayment, 100, 0)
		testutil.AssertClose(t, "TotalInterest", got.TotalInterest, 0, 1e-9)
	})

	t.Run("compound round trip", func(t *testing.T) {
		loan := newLoan(t, 10000, 5, models.InterestCompound, "2024-01-01", "2029-01-01")

		got := MonthlyPayment(loan)

		if got.Months != 60 {
			t.Fatalf("Months = %d, want 60", got.Months)
		}
		testutil.AssertClose(t, "MonthlyPayment", got.MonthlyPayment, 188.71, 0.01)
		testutil.AssertClose(t, "TotalPayment", got.TotalPayment, got.MonthlyPayment*60, 1e-9)
		testutil.AssertClose(t, "TotalInterest", got.TotalInterest, got.TotalPayment-10000, 1e-9)
	})

	zeroCases := []struct {
		name   string
		mutate func(*models.Loan)
	}{
		{"one-time schedule", func(l *models.Loan) { l.RepaymentSchedule = models.RepaymentOneTime }},
		{"due date before loan date", func(l *models.Loan) { l.DueDate = l.Date.AddDate(0, -3, 0) }},
		{"due date in same month", func(l *models.Loan) { l.DueDate = l.Date.AddDate(0, 0, 10) }},
		{"zero principal", func(l *models.Loan) { l.TotalAmount = 0 }},
		{"NaN principal", func(l *models.Loan) { l.TotalAmount = math.NaN() }},
		{"unknown interest type", func(l *models.Loan) { l.InterestType = "weird" }},
	}
	for _, tt := range zeroCases {
		t.Run(tt.name, func(t *testing.T) {
			loan := newLoan(t, 1000, 10, models.InterestCompound, "2024-01-01", "2025-01-01")
			tt.mutate(&loan)

			if got := MonthlyPayment(loan); got != (models.LoanPayment{}) {
				t.Errorf("expected zero payment, got %+v", got)
			}
		})
	}

	t.Run("NaN rate falls back to straight line", func(t *testing.T) {
		loan := newLoan(t, 1200, math.NaN(), models.InterestCompound, "2024-01-01", "2025-01-01")

		testutil.AssertClose(t, "MonthlyPayment", MonthlyPayment(loan).MonthlyPayment, 100, 0)
	})
}

func TestCalculate(t *testing.T) {
	got, ok := Calculate(10000, 5, 5)
	if !ok {
		t.Fatal("expected a result")
	}
	if got.Months != 60 {
		t.Errorf("Months = %d, want 60", got.Months)
	}
	testutil.AssertClose(t, "MonthlyPayment", got.MonthlyPayment, 188.71, 0.01)
	testutil.AssertClose(t, "TotalPayment", got.TotalPayment, got.MonthlyPayment*60, 1e-9)
	testutil.AssertClose(t, "TotalInterest", got.TotalInterest, got.TotalPayment-10000, 1e-9)

	invalid := []struct {
		name               string
		amount, rate, term float64
	}{
		{"zero amount", 0, 5, 5},
		{"zero rate", 10000, 0, 5},
		{"negative term", 10000, 5, -1},
		{"NaN rate", 10000, math.NaN(), 5},
		{"infinite amount", math.Inf(1), 5, 5},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Calculate(tt.amount, tt.rate, tt.term); ok {
				t.Error("expected no result")
			}
		})
	}
}

func TestAmortize(t *testing.T) {
	tests := []struct {
		name     string
		interest models.InterestType
		rate     float64
	}{
		{"compound", models.InterestCompound, 7.5},
		{"simple", models.InterestSimple, 10},
		{"zero rate", models.InterestCompound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := newLoan(t, 5000, tt.rate, tt.interest, "2024-01-31", "2025-07-31")
			payment := MonthlyPayment(loan)

			rows := Amortize(loan)

			if len(rows) != payment.Months {
				t.Fatalf("got %d rows, want %d", len(rows), payment.Months)
			}
			var principal, interest float64
			for _, r := range rows {
				principal += r.Principal
				interest += r.Interest
			}
			testutil.AssertClose(t, "principal repaid", principal, 5000, 0.1)
			testutil.AssertClose(t, "interest paid", interest, payment.TotalInterest, 0.1)
			if last := rows[len(rows)-1]; last.Balance != 0 {
				t.Errorf("final balance = %v, want 0", last.Balance)
			}
			if rows[0].Date.String() != "2024-02-29" || rows[1].Date.String() != "2024-03-31" {
				t.Errorf("first rows dated %s, %s; want 2024-02-29, 2024-03-31", rows[0].Date, rows[1].Date)
			}
			month := loan.Date
			for _, r := range rows {
				if calendar.MonthsBetween(month, r.Date) != 1 {
					t.Errorf("row %d dated %s, want the month after %s", r.Number, r.Date, month)
				}
				month = r.Date
			}
		})
	}

	t.Run("one-time loan has no schedule", func(t *testing.T) {
		loan := newLoan(t, 5000, 5, models.InterestCompound, "2024-01-01", "2025-01-01")
		loan.RepaymentSchedule = models.RepaymentOneTime

		if rows := Amortize(loan); len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})
}

func TestApplyRepayment(t *testing.T) {
	t.Run("never goes negative", func(t *testing.T) {
		loan := newLoan(t, 500, 0, models.InterestSimple, "2024-01-01", "2024-06-01")

		got, ok := ApplyRepayment(loan, models.Repayment{ID: "r1", Amount: 700, Date: testutil.Date(t, "2024-02-01")})

		if !ok {
			t.Fatal("expected repayment to apply")
		}
		if got.OutstandingAmount != 0 {
			t.Errorf("OutstandingAmount = %v, want 0", got.OutstandingAmount)
		}
		if !got.IsSettled() {
			t.Error("loan should be settled")
		}
	})

	t.Run("newest first in insertion order", func(t *testing.T) {
		loan := newLoan(t, 1000, 0, models.InterestSimple, "2024-01-01", "2024-06-01")
		repayments := []models.Repayment{
			{ID: "r1", Amount: 100, Date: testutil.Date(t, "2024-03-01")},
			{ID: "r2", Amount: 200, Date: testutil.Date(t, "2024-02-01")},
			{ID: "r3", Amount: 50, Date: testutil.Date(t, "2024-04-01")},
		}
		for _, r := range repayments {
			loan, _ = ApplyRepayment(loan, r)
		}

		var ids []string
		for _, r := range loan.Repayments {
			ids = append(ids, r.ID)
		}
		if len(ids) != 3 || ids[0] != "r3" || ids[1] != "r2" || ids[2] != "r1" {
			t.Errorf("repayment order = %v, want [r3 r2 r1]", ids)
		}
		testutil.AssertClose(t, "OutstandingAmount", loan.OutstandingAmount, 650, 1e-9)
		testutil.AssertClose(t, "ExpectedOutstanding", loan.ExpectedOutstanding(), 650, 1e-9)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		loan := newLoan(t, 1000, 0, models.InterestSimple, "2024-01-01", "2024-06-01")

		_, _ = ApplyRepayment(loan, models.Repayment{ID: "r1", Amount: 100})

		if loan.OutstandingAmount != 1000 || len(loan.Repayments) != 0 {
			t.Errorf("input loan modified: %+v", loan)
		}
	})

	for _, amount := range []float64{0, -10, math.NaN()} {
		t.Run("rejects invalid amount", func(t *testing.T) {
			loan := newLoan(t, 1000, 0, models.InterestSimple, "2024-01-01", "2024-06-01")

			got, ok := ApplyRepayment(loan, models.Repayment{ID: "bad", Amount: amount})

			if ok || got.OutstandingAmount != 1000 || len(got.Repayments) != 0 {
				t.Errorf("amount %v should be rejected, got %+v", amount, got)
			}
		})
	}
}

func TestRecalculate(t *testing.T) {
	loan := newLoan(t, 500, 0, models.InterestSimple, "2024-01-01", "2024-06-01")
	loan.Repayments = []models.Repayment{{ID: "a", Amount: 300}, {ID: "b", Amount: 400}}
	loan.OutstandingAmount = 123

	got := Recalculate(loan)

	if got.OutstandingAmount != 0 {
		t.Errorf("OutstandingAmount = %v, want 0", got.OutstandingAmount)
	}
}

func TestRepaymentEntry(t *testing.T) {
	r := models.Repayment{ID: "r1", Amount: 75, Date: testutil.Date(t, "2024-05-05")}

	tests := []struct {
		loanType models.LoanType
		want     models.TransactionType
	}{
		{models.LoanBorrowed, models.Expense},
		{models.LoanLent, models.Income},
	}
	for _, tt := range tests {
		t.Run(string(tt.loanType), func(t *testing.T) {
			loan := newLoan(t, 500, 0, models.InterestSimple, "2024-01-01", "2024-06-01")
			loan.Type = tt.loanType

			entry := RepaymentEntry(loan, r)

			if entry.Type != tt.want {
				t.Errorf("Type = %s, want %s", entry.Type, tt.want)
			}
			if entry.Category != LedgerCategory || entry.Source != models.SourceLoan || entry.SourceID != loan.ID {
				t.Errorf("unexpected entry metadata: %+v", entry)
			}
			if entry.Amount != 75 || entry.Date.String() != "2024-05-05" {
				t.Errorf("unexpected amount/date: %+v", entry)
			}
			if entry.Hash == "" {
				t.Error("expected a content hash")
			}
		})
	}
}

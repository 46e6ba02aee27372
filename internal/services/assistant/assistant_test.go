package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func plain(v float64) string { return fmt.Sprintf("%.2f", v) }

func sampleSummary() *models.Summary {
	return &models.Summary{
		Metrics: &models.DashboardMetrics{TotalIncome: 3000, TotalExpenses: 1200, NetSavings: 1800, SavingsRate: 60, TransactionCount: 12},
		Categories: []models.CategorySummary{
			{Category: "Rent", Amount: 900, Percentage: 75},
		},
		Goals: []models.GoalStatus{
			{Name: "Car", TargetAmount: 10000, CurrentValue: 2500, FutureValue: 9000, Progress: 25, Deadline: models.MustParseDate("2025-03-01")},
		},
		LentOut:    300,
		Owed:       1200,
		MonthlyEMI: 100,
		UpcomingBills: []models.UpcomingItem{
			{Name: "Rent", Amount: 900, Type: models.Expense, Date: models.MustParseDate("2024-04-01")},
		},
	}
}

// fakeServer answers chat completions with reply and records the last request
func fakeServer(t *testing.T, reply string, status int) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var last openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: last.Model,
			Choices: []openai.ChatCompletionChoice{
				{Index: 0, Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
			Usage: openai.Usage{TotalTokens: 42},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestAskSendsSnapshot(t *testing.T) {
	srv, last := fakeServer(t, "  You saved 1800.00 this period.  ", http.StatusOK)
	log, hook := testutil.Logger()
	client := New("test-key", srv.URL, "test-model", log)

	answer, err := client.Ask(context.Background(), "How much did I save?", sampleSummary(), models.MustParseDate("2024-03-10"), plain)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer != "You saved 1800.00 this period." {
		t.Errorf("answer = %q", answer)
	}

	if last.Model != "test-model" || len(last.Messages) != 2 {
		t.Fatalf("request = %+v", last)
	}
	testutil.AssertOutput(t, last.Messages[0].Content).
		Contains("Today: 2024-03-10").
		Contains("net savings 1800.00").
		Contains("- Car: 2500.00 of 10000.00 (25%)").
		Contains("monthly EMI 100.00").
		Contains("- 2024-04-01 Rent: 900.00 (expense)")
	if last.Messages[1].Content != "How much did I save?" {
		t.Errorf("user message = %q", last.Messages[1].Content)
	}

	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.DebugLevel || entry.Data["tokens"] != 42 {
		t.Errorf("expected a debug entry with token usage, got %+v", entry)
	}
}

func TestReplyFallsBackOnError(t *testing.T) {
	srv, _ := fakeServer(t, "", http.StatusInternalServerError)
	log, hook := testutil.Logger()
	client := New("test-key", srv.URL, "test-model", log)

	if _, err := client.Ask(context.Background(), "hi", nil, models.MustParseDate("2024-03-10"), plain); err == nil {
		t.Error("Ask should fail on a server error")
	}

	got := client.Reply(context.Background(), "hi", nil, models.MustParseDate("2024-03-10"), plain)
	if got != FallbackReply {
		t.Errorf("Reply = %q, want the fallback", got)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning, got %+v", entry)
	}
}

func TestAskWithoutKey(t *testing.T) {
	log, _ := testutil.Logger()
	client := New("", "", "test-model", log)

	_, err := client.Ask(context.Background(), "hi", nil, models.MustParseDate("2024-03-10"), plain)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Ask error = %v, want ErrNotConfigured", err)
	}
	if got := client.Reply(context.Background(), "hi", nil, models.MustParseDate("2024-03-10"), plain); got != FallbackReply {
		t.Errorf("Reply = %q, want the fallback", got)
	}
}

func TestSnapshot(t *testing.T) {
	if got := Snapshot(nil, plain); got != "No financial data recorded yet." {
		t.Errorf("Snapshot(nil) = %q", got)
	}

	out := Snapshot(&models.Summary{}, plain)
	if strings.Contains(out, "Savings goals") || strings.Contains(out, "Upcoming") {
		t.Errorf("empty sections should be omitted: %q", out)
	}
	testutil.AssertOutput(t, out).Contains("Loans: lent out 0.00").Lines(1)
}

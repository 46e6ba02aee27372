// Package assistant answers questions about the user's finances through an
// OpenAI-compatible chat completion endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
)

// FallbackReply is shown when the assistant cannot be reached
const FallbackReply = "Sorry, I couldn't reach the assistant right now. " +
	"Your data is safe; try again in a moment or check your AI settings."

// DefaultTimeout bounds one chat completion
const DefaultTimeout = 30 * time.Second

// ErrNotConfigured is returned by Ask when no API key is set
var ErrNotConfigured = errors.New("assistant: no API key configured")

// Formatter renders an amount for the prompt
type Formatter func(float64) string

// Client answers questions about a user's finances through an
// OpenAI-compatible chat completion endpoint
type Client struct {
	client  *openai.Client
	model   string
	enabled bool
	log     *logrus.Logger
}

// New creates a client for model. An empty baseURL keeps the OpenAI default;
// an empty apiKey gives a client whose Ask always returns ErrNotConfigured.
func New(apiKey, baseURL, model string, log *logrus.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		enabled: apiKey != "",
		log:     log,
	}
}

const systemPromptTemplate = `You are the assistant of a personal finance tracker.
Answer the user's questions about their money using only the snapshot below.
Be concise and practical. Amounts are already formatted in the user's currency.
If the snapshot does not contain what is asked, say so instead of guessing.

Today: %s

%s`

// Ask sends question with a snapshot of summary as context and returns the
// model's reply
func (c *Client) Ask(ctx context.Context, question string, summary *models.Summary, today models.Date, format Formatter) (string, error) {
	if !c.enabled {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPromptTemplate, today, Snapshot(summary, format)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get AI response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	c.log.WithFields(logrus.Fields{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"tokens":      resp.Usage.TotalTokens,
	}).Debug("Assistant replied")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Reply is Ask with errors logged and replaced by FallbackReply
func (c *Client) Reply(ctx context.Context, question string, summary *models.Summary, today models.Date, format Formatter) string {
	answer, err := c.Ask(ctx, question, summary, today, format)
	if err != nil {
		c.log.WithError(err).Warn("Assistant unavailable, using fallback reply")
		return FallbackReply
	}
	if answer == "" {
		return FallbackReply
	}
	return answer
}

// Snapshot renders the parts of summary the assistant may talk about
func Snapshot(s *models.Summary, format Formatter) string {
	if s == nil {
		return "No financial data recorded yet."
	}

	var b strings.Builder
	if m := s.Metrics; m != nil {
		fmt.Fprintf(&b, "Totals: income %s, expenses %s, net savings %s, savings rate %.1f%% over %d transactions\n",
			format(m.TotalIncome), format(m.TotalExpenses), format(m.NetSavings), m.SavingsRate, m.TransactionCount)
	}

	if len(s.Categories) > 0 {
		b.WriteString("Top spending categories:\n")
		for i, c := range s.Categories {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s (%.0f%%)\n", c.Category, format(c.Amount), c.Percentage)
		}
	}

	if len(s.Goals) > 0 {
		b.WriteString("Savings goals:\n")
		for _, g := range s.Goals {
			fmt.Fprintf(&b, "- %s: %s of %s (%.0f%%), projected %s by %s\n",
				g.Name, format(g.CurrentValue), format(g.TargetAmount), g.Progress, format(g.FutureValue), g.Deadline)
		}
	}

	fmt.Fprintf(&b, "Loans: lent out %s, owed %s, monthly EMI %s\n",
		format(s.LentOut), format(s.Owed), format(s.MonthlyEMI))

	if len(s.UpcomingBills) > 0 {
		b.WriteString("Upcoming scheduled items:\n")
		for _, u := range s.UpcomingBills {
			fmt.Fprintf(&b, "- %s %s: %s (%s)\n", u.Date, u.Name, format(u.Amount), u.Type)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

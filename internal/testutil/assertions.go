package testutil

import (
	"regexp"
	"strings"
	"testing"
)

// OutputAssertion provides fluent assertions for command output
type OutputAssertion struct {
	t      *testing.T
	output string
}

// AssertOutput creates a new OutputAssertion for the given output
func AssertOutput(t *testing.T, output string) *OutputAssertion {
	t.Helper()
	return &OutputAssertion{t: t, output: output}
}

// Contains asserts the output contains the given string
func (oa *OutputAssertion) Contains(substr string) *OutputAssertion {
	oa.t.Helper()
	if !strings.Contains(oa.output, substr) {
		oa.t.Errorf("Expected output to contain %q, but it didn't.\nOutput (first 500 chars): %s",
			substr, truncate(oa.output, 500))
	}
	return oa
}

// ContainsAll asserts the output contains all the given strings
func (oa *OutputAssertion) ContainsAll(substrs ...string) *OutputAssertion {
	oa.t.Helper()
	for _, substr := range substrs {
		oa.Contains(substr)
	}
	return oa
}

// NotContains asserts the output does not contain the given string
func (oa *OutputAssertion) NotContains(substr string) *OutputAssertion {
	oa.t.Helper()
	if strings.Contains(oa.output, substr) {
		oa.t.Errorf("Expected output NOT to contain %q, but it did", substr)
	}
	return oa
}

// Matches asserts the output matches the given regex pattern
func (oa *OutputAssertion) Matches(pattern string) *OutputAssertion {
	oa.t.Helper()
	matched, err := regexp.MatchString(pattern, oa.output)
	if err != nil {
		oa.t.Fatalf("Invalid regex pattern %q: %v", pattern, err)
	}
	if !matched {
		oa.t.Errorf("Expected output to match pattern %q, but it didn't.\nOutput (first 500 chars): %s",
			pattern, truncate(oa.output, 500))
	}
	return oa
}

// Lines asserts the output has exactly n non-empty lines
func (oa *OutputAssertion) Lines(n int) *OutputAssertion {
	oa.t.Helper()
	count := 0
	for _, line := range strings.Split(oa.output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	if count != n {
		oa.t.Errorf("Expected %d non-empty lines, got %d.\nOutput: %s", n, count, truncate(oa.output, 500))
	}
	return oa
}

// String returns the raw output
func (oa *OutputAssertion) String() string {
	return oa.output
}

// truncate truncates a string to the given length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

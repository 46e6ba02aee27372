// Package testutil provides testing utilities for the tracker.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"fintrack/internal/models"
)

// ProjectRoot returns the root directory of the project.
// It works by finding the go.mod file.
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}

	// Start from this file's directory and walk up
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// TestConfig returns environment overrides pointing the tracker at dataDir
func TestConfig(dataDir string) map[string]string {
	return map[string]string{
		"FINTRACK_DATA_DIR":   dataDir,
		"FINTRACK_USER":       "test-user",
		"FINTRACK_DEBUG":      "true",
		"FINTRACK_LOG_LEVEL":  "error",
		"FINTRACK_AI_API_KEY": "",
	}
}

// SetTestEnv sets the TestConfig environment for the duration of the test
func SetTestEnv(t *testing.T, dataDir string) {
	t.Helper()
	for k, v := range TestConfig(dataDir) {
		t.Setenv(k, v)
	}
}

// Date parses a YYYY-MM-DD literal or fails the test
func Date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date: %v", err)
	}
	return d
}

// DatePtr is Date returning a pointer, for optional fields
func DatePtr(t *testing.T, s string) *models.Date {
	t.Helper()
	d := Date(t, s)
	return &d
}

// AssertClose fails the test when got and want differ by more than tol
func AssertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

// Logger returns a logger that discards output and records entries in hook
func Logger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

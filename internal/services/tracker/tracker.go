// Package tracker is the application service behind the CLI. Every
// mutation loads a collection, applies the pure calculators, saves the
// collection and logs what changed.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/calendar"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/records"
)

// ErrNotFound is returned for ids that do not exist
var ErrNotFound = errors.New("not found")

// Tracker manages one user's goals, loans, scheduled items and ledger
type Tracker struct {
	repo    *records.Repository
	log     *logrus.Logger
	metrics *metrics.Service

	// Now returns the current time; tests replace it
	Now func() time.Time
}

// New creates a tracker over repo
func New(repo *records.Repository, log *logrus.Logger) *Tracker {
	return &Tracker{
		repo:    repo,
		log:     log,
		metrics: metrics.New(),
		Now:     time.Now,
	}
}

// User returns the user whose data the tracker manages
func (t *Tracker) User() string {
	return t.repo.User()
}

// Today is the current calendar date
func (t *Tracker) Today() models.Date {
	return calendar.Today(t.Now())
}

// entry returns a log entry tagged with the user
func (t *Tracker) entry(fields logrus.Fields) *logrus.Entry {
	return t.log.WithField("user", t.repo.User()).WithFields(fields)
}

// newID returns a time-ordered identifier
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// indexOf returns the position of the element with id, or -1
func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

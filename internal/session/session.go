// Package session manages comparison sessions.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/Permanence/internal/database"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session already complete")
	ErrSameNote        = errors.New("cannot compare a note with itself")
	ErrInvalidChoice   = errors.New("chosen note must be one of the compared notes")
)

// Store is the part of the record store a tracker needs.
type Store interface {
	InsertSession(s *database.Session) error
	GetSession(id int64) (*database.Session, error)
	UpdateSession(s *database.Session) error
	RecordSessionComparison(sessionID int64, c *database.Comparison) error
}

// Tracker starts sessions, records comparisons in them and completes them.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Start opens a new session. An empty type means "gradual".
func (t *Tracker) Start(sessionType string) (*database.Session, error) {
	sessionType = strings.TrimSpace(sessionType)
	if sessionType == "" {
		sessionType = database.DefaultSessionType
	}
	s := &database.Session{SessionType: sessionType, StartDate: t.now()}
	if err := t.store.InsertSession(s); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	log.Printf("Started %s session %d", s.SessionType, s.ID)
	return s, nil
}

// Record stores the judgment that chosen beats the other of a and b.
func (t *Tracker) Record(sessionID int64, a, b, chosen database.NoteID) (*database.Comparison, error) {
	if a == b {
		return nil, ErrSameNote
	}
	if chosen != a && chosen != b {
		return nil, ErrInvalidChoice
	}

	s, err := t.open(sessionID)
	if err != nil {
		return nil, err
	}

	c := &database.Comparison{
		NoteAID:      a,
		NoteBID:      b,
		ChosenNoteID: chosen,
		SessionType:  s.SessionType,
		ComparedAt:   t.now(),
	}
	if err := t.store.RecordSessionComparison(sessionID, c); err != nil {
		return nil, fmt.Errorf("recording comparison: %w", err)
	}
	return c, nil
}

// Complete closes a session.
func (t *Tracker) Complete(sessionID int64) (*database.Session, error) {
	s, err := t.open(sessionID)
	if err != nil {
		return nil, err
	}
	end := t.now()
	s.EndDate = &end
	s.IsComplete = true
	if err := t.store.UpdateSession(s); err != nil {
		return nil, fmt.Errorf("completing session %d: %w", sessionID, err)
	}
	log.Printf("Completed session %d with %d comparisons", s.ID, s.ComparisonsCount)
	return s, nil
}

func (t *Tracker) open(sessionID int64) (*database.Session, error) {
	s, err := t.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %d: %w", sessionID, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	if s.IsComplete {
		return nil, fmt.Errorf("%w: %d", ErrSessionComplete, sessionID)
	}
	return s, nil
}

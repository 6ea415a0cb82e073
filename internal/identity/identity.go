// Package identity supplies unique ids and timestamps to the domain machines.
package identity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Source hands out process-unique ids and the current time.
type Source interface {
	NewID() string
	Now() time.Time
}

// System uses random UUIDs and the wall clock.
type System struct{}

func (System) NewID() string  { return uuid.NewString() }
func (System) Now() time.Time { return time.Now().UTC() }

// Sequence yields deterministic ids ("<prefix>-1", "<prefix>-2", ...) and a
// clock that advances by Step on every call. Used by tests and fixtures.
type Sequence struct {
	Prefix string
	Start  time.Time
	Step   time.Duration

	mu    sync.Mutex
	ids   int
	ticks int
}

// NewSequence returns a Sequence starting at start with one-second ticks.
func NewSequence(prefix string, start time.Time) *Sequence {
	return &Sequence{Prefix: prefix, Start: start, Step: time.Second}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids++
	return fmt.Sprintf("%s-%d", s.Prefix, s.ids)
}

func (s *Sequence) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.Start.Add(time.Duration(s.ticks) * s.Step)
	s.ticks++
	return t
}

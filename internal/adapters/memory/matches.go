package memory

import (
	"context"
	"fmt"
	"sync"

	"dealmatch/internal/domain"
)

type Matches struct {
	mu    sync.RWMutex
	seq   int64
	order []string
	byID  map[string]domain.Match
	pairs map[[2]string]string
}

func NewMatches() *Matches {
	return &Matches{byID: make(map[string]domain.Match), pairs: make(map[[2]string]string)}
}

// Append stores m with the next sequence number. A repeated viewer/profile
// pair returns the existing match unchanged.
func (s *Matches) Append(_ context.Context, m domain.Match) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair := [2]string{m.ViewerID, m.Profile.ID}
	if id, ok := s.pairs[pair]; ok {
		return cloneMatch(s.byID[id]), nil
	}
	if _, ok := s.byID[m.ID]; ok {
		return domain.Match{}, fmt.Errorf("match %s: %w", m.ID, ErrDuplicate)
	}
	s.seq++
	m.Seq = s.seq
	m.Profile = cloneProfile(m.Profile)
	s.byID[m.ID] = m
	s.pairs[pair] = m.ID
	s.order = append(s.order, m.ID)
	return cloneMatch(m), nil
}

func (s *Matches) Get(_ context.Context, id string) (domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return domain.Match{}, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
	}
	return cloneMatch(m), nil
}

func (s *Matches) ListByViewer(_ context.Context, viewerID string) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Match
	for _, id := range s.order {
		if m := s.byID[id]; m.ViewerID == viewerID {
			out = append(out, cloneMatch(m))
		}
	}
	return out, nil
}

func (s *Matches) Update(_ context.Context, id string, fn func(*domain.Match) error) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return domain.Match{}, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
	}
	next := cloneMatch(m)
	if err := fn(&next); err != nil {
		return cloneMatch(m), err
	}
	next.ID, next.Seq, next.ViewerID = m.ID, m.Seq, m.ViewerID
	s.byID[id] = next
	return cloneMatch(next), nil
}

func cloneMatch(m domain.Match) domain.Match {
	m.Profile = cloneProfile(m.Profile)
	return m
}

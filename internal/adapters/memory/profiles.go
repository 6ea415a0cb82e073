// Package memory keeps the canonical collections in process memory. Each
// collection has its own lock, so the stores are safe for concurrent use.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"dealmatch/internal/domain"
)

// ErrDuplicate is returned when an id is inserted twice.
var ErrDuplicate = errors.New("duplicate id")

type Profiles struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Profile
}

func NewProfiles() *Profiles {
	return &Profiles{byID: make(map[string]domain.Profile)}
}

func (s *Profiles) Create(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
	}
	s.byID[p.ID] = cloneProfile(p)
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Profiles) Get(_ context.Context, id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return cloneProfile(p), nil
}

func (s *Profiles) List(_ context.Context) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneProfile(s.byID[id]))
	}
	return out, nil
}

func (s *Profiles) TouchLastActive(_ context.Context, id, marker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	p.LastActive = marker
	s.byID[id] = p
	return nil
}

func cloneProfile(p domain.Profile) domain.Profile {
	p.Interests = slices.Clone(p.Interests)
	p.Attributes = maps.Clone(p.Attributes)
	return p
}

// Package discovery hosts one matching engine per viewer. Each viewer's
// engine is built lazily from the stored profiles, excluding the viewer, and
// its swipes are serialised.
package discovery

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
	"dealmatch/internal/logging"
	"dealmatch/internal/matching"
	"dealmatch/internal/ports"
)

type Service struct {
	profiles ports.ProfileRepository
	matches  ports.MatchRepository
	ids      identity.Source
	log      *slog.Logger

	mu      sync.Mutex
	viewers map[string]*viewer
}

type viewer struct {
	mu     sync.Mutex
	engine *matching.Engine
}

func New(profiles ports.ProfileRepository, matches ports.MatchRepository, ids identity.Source, logger *slog.Logger) *Service {
	if ids == nil {
		ids = identity.System{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{profiles: profiles, matches: matches, ids: ids, log: logger, viewers: make(map[string]*viewer)}
}

// Current returns the viewer's current candidate and the queue position.
func (s *Service) Current(ctx context.Context, viewerID string) (domain.Profile, int, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return domain.Profile{}, 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	q := v.engine.Queue()
	p, err := q.Current()
	return p, q.Position(), err
}

// Stack returns up to n upcoming candidates without consuming them.
func (s *Service) Stack(ctx context.Context, viewerID string, n int) ([]domain.Profile, int, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	q := v.engine.Queue()
	return slices.Collect(q.Peek(n)), q.Position(), nil
}

func (s *Service) Swipe(ctx context.Context, viewerID string, dir matching.Direction) (matching.SwipeResult, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return matching.SwipeResult{}, err
	}
	v.mu.Lock()
	res, err := v.engine.Swipe(ctx, dir)
	v.mu.Unlock()
	if err != nil {
		return res, err
	}
	if err := s.profiles.TouchLastActive(ctx, viewerID, domain.LastActiveNow); err != nil {
		s.log.Warn("touch last active failed", "viewer", viewerID, "error", err)
	}
	if res.Match != nil {
		s.log.Info("match created", "viewer", viewerID, "match", res.Match.ID, "profile", res.Match.Profile.ID)
	}
	return res, nil
}

// Matches lists the viewer's matches in swipe order.
func (s *Service) Matches(ctx context.Context, viewerID string) ([]domain.Match, error) {
	return s.matches.ListByViewer(ctx, viewerID)
}

func (s *Service) SetStatus(ctx context.Context, matchID string, status domain.MatchStatus) (domain.Match, error) {
	return matching.SetStatus(ctx, s.matches, matchID, status)
}

func (s *Service) RecordMessage(ctx context.Context, matchID, excerpt string) (domain.Match, error) {
	return matching.RecordMessage(ctx, s.matches, matchID, excerpt, s.ids.Now())
}

// UpdateMatch applies a status change and/or a message excerpt atomically.
func (s *Service) UpdateMatch(ctx context.Context, matchID string, change matching.MatchChange) (domain.Match, error) {
	return matching.ApplyChange(ctx, s.matches, matchID, change, s.ids.Now())
}

func (s *Service) viewer(ctx context.Context, viewerID string) (*viewer, error) {
	s.mu.Lock()
	v, ok := s.viewers[viewerID]
	s.mu.Unlock()
	if ok {
		return v, nil
	}

	// Build outside the lock so other viewers are not held up by storage.
	if _, err := s.profiles.Get(ctx, viewerID); err != nil {
		return nil, err
	}
	all, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	candidates := slices.DeleteFunc(all, func(p domain.Profile) bool { return p.ID == viewerID })
	built := &viewer{engine: matching.NewEngine(viewerID, matching.NewQueue(candidates), s.matches, s.ids)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.viewers[viewerID]; ok {
		return v, nil
	}
	s.viewers[viewerID] = built
	return built, nil
}

package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
	"dealmatch/internal/logging"
	"dealmatch/internal/onboarding"
	"dealmatch/internal/ports"
	"dealmatch/internal/schema"
)

// Service hosts onboarding sessions and persists the profiles they produce.
type Service struct {
	schema schema.Schema
	ids    identity.Source
	repo   ports.ProfileRepository
	log    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu      sync.Mutex
	flow    *onboarding.Flow
	profile *domain.Profile
	saved   bool
}

func New(s schema.Schema, repo ports.ProfileRepository, ids identity.Source, logger *slog.Logger) *Service {
	if ids == nil {
		ids = identity.System{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{schema: s, ids: ids, repo: repo, log: logger, sessions: make(map[string]*session)}
}

func (s *Service) Schema(role domain.Role) ([]domain.Step, error) {
	return s.schema.Steps(role)
}

// Begin opens a new onboarding session for role.
func (s *Service) Begin(_ context.Context, role domain.Role) (string, onboarding.State, error) {
	flow := onboarding.New(s.schema, s.ids)
	if err := flow.Start(role); err != nil {
		return "", onboarding.State{}, err
	}
	id := s.ids.NewID()
	s.mu.Lock()
	s.sessions[id] = &session{flow: flow}
	s.mu.Unlock()
	return id, flow.State(), nil
}

func (s *Service) State(_ context.Context, sessionID string) (onboarding.State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return onboarding.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.flow.State(), nil
}

func (s *Service) Answer(_ context.Context, sessionID, fieldID string, value domain.Answer) (onboarding.State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return onboarding.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.flow.SetAnswer(fieldID, value); err != nil {
		return sess.flow.State(), err
	}
	return sess.flow.State(), nil
}

// Advance moves the session forward. When the last step is accepted the
// profile is stored and returned; a failed store is retried by the next
// Advance.
func (s *Service) Advance(ctx context.Context, sessionID string) (onboarding.State, *domain.Profile, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return onboarding.State{}, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.profile == nil {
		res, err := sess.flow.Advance()
		if err != nil {
			return sess.flow.State(), nil, err
		}
		if res.Profile == nil {
			return sess.flow.State(), nil, nil
		}
		sess.profile = res.Profile
	} else if sess.saved {
		return sess.flow.State(), nil, domain.ErrFlowFinished
	}

	if err := s.repo.Create(ctx, *sess.profile); err != nil {
		return sess.flow.State(), nil, fmt.Errorf("store profile: %w", err)
	}
	sess.saved = true
	s.log.Info("onboarding completed", "session", sessionID, "profile", sess.profile.ID, "role", sess.profile.Role)
	p := *sess.profile
	return sess.flow.State(), &p, nil
}

func (s *Service) Back(_ context.Context, sessionID string) (onboarding.State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return onboarding.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.flow.Back(); err != nil {
		return sess.flow.State(), err
	}
	return sess.flow.State(), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.List(ctx)
}

func (s *Service) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("onboarding session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

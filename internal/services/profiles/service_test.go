package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealmatch/internal/adapters/memory"
	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
	"dealmatch/internal/schema"
)

type flakyRepo struct {
	*memory.Profiles
	failures int
}

func (f *flakyRepo) Create(ctx context.Context, p domain.Profile) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.Profiles.Create(ctx, p)
}

func completeSeller(t *testing.T, svc *Service, sessionID string) (*domain.Profile, error) {
	t.Helper()
	ctx := context.Background()
	answers := []map[string]domain.Answer{
		{"name": domain.Text("Jennifer Walsh"), "email": domain.Text("jw@coastal.example"), "company": domain.Text("Coastal Manufacturing"), "location": domain.Text("Portland, OR")},
		{"industry": domain.Text("Manufacturing"), "revenue": domain.Text("$5M+"), "employees": domain.Text("11-50"), "founded": domain.Text("1998")},
		{"description": domain.Text("Sustainable packaging."), "reason": domain.Text("Retirement")},
	}
	var profile *domain.Profile
	var err error
	for _, step := range answers {
		for id, a := range step {
			if _, err := svc.Answer(ctx, sessionID, id, a); err != nil {
				t.Fatalf("answer %s: %v", id, err)
			}
		}
		_, profile, err = svc.Advance(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func TestSessionStoresCompletedProfile(t *testing.T) {
	repo := memory.NewProfiles()
	svc := New(schema.MustDefault(), repo, identity.NewSequence("id", time.Unix(0, 0)), nil)
	id, st, err := svc.Begin(context.Background(), domain.RoleSeller)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if st.Step != 0 || st.StepCount != 3 {
		t.Fatalf("unexpected initial state: %+v", st)
	}
	p, err := completeSeller(t, svc, id)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if p == nil || p.Role != domain.RoleSeller || p.Revenue != "$5M+" || p.Attributes["founded"] != "1998" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	stored, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("stored profile: %v", err)
	}
	if stored.Company != "Coastal Manufacturing" {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
	if _, _, err := svc.Advance(context.Background(), id); !errors.Is(err, domain.ErrFlowFinished) {
		t.Fatalf("expected ErrFlowFinished, got %v", err)
	}
}

func TestAdvanceRetriesFailedStore(t *testing.T) {
	repo := &flakyRepo{Profiles: memory.NewProfiles(), failures: 1}
	svc := New(schema.MustDefault(), repo, nil, nil)
	id, _, _ := svc.Begin(context.Background(), domain.RoleSeller)
	if _, err := completeSeller(t, svc, id); err == nil {
		t.Fatalf("expected store failure")
	}
	_, p, err := svc.Advance(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("expected retry to store profile, got %v", err)
	}
	all, _ := repo.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected one stored profile, got %d", len(all))
	}
}

func TestUnknownSession(t *testing.T) {
	svc := New(schema.MustDefault(), memory.NewProfiles(), nil, nil)
	if _, err := svc.State(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Begin(context.Background(), "broker"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

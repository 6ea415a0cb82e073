package matching_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealmatch/internal/adapters/memory"
	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
	"dealmatch/internal/matching"
)

func newEngine(ids ...string) (*matching.Engine, *memory.Matches) {
	candidates := make([]domain.Profile, len(ids))
	for i, id := range ids {
		candidates[i] = domain.Profile{ID: id, Role: domain.RoleSeller}
	}
	store := memory.NewMatches()
	seq := identity.NewSequence("m", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	return matching.NewEngine("viewer", matching.NewQueue(candidates), store, seq), store
}

func TestSwipeScenario(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine("P1", "P2")

	res, err := eng.Swipe(ctx, matching.Pass)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if res.Match != nil || res.Position != 1 || res.Exhausted {
		t.Fatalf("unexpected pass result: %+v", res)
	}

	res, err = eng.Swipe(ctx, matching.Like)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if res.Match == nil || res.Match.Profile.ID != "P2" || res.Position != 2 || !res.Exhausted {
		t.Fatalf("unexpected like result: %+v", res)
	}
	if res.Match.Status != domain.MatchNew || res.Match.ViewerID != "viewer" {
		t.Fatalf("unexpected match fields: %+v", res.Match)
	}

	if _, err := eng.Swipe(ctx, matching.Like); !errors.Is(err, domain.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
	matches, err := eng.Matches(ctx)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(matches))
	}
}

func TestQueueExhaustsAfterExactlyNSwipes(t *testing.T) {
	ctx := context.Background()
	ids := []string{"a", "b", "c", "d", "e"}
	eng, _ := newEngine(ids...)
	for i := range ids {
		if eng.Queue().Exhausted() {
			t.Fatalf("exhausted early before swipe %d", i+1)
		}
		dir := matching.Pass
		if i%2 == 0 {
			dir = matching.Like
		}
		before, _ := eng.Queue().Current()
		res, err := eng.Swipe(ctx, dir)
		if err != nil {
			t.Fatalf("swipe %d: %v", i, err)
		}
		if res.Position != i+1 {
			t.Fatalf("expected cursor %d, got %d", i+1, res.Position)
		}
		if dir == matching.Like && (res.Match == nil || res.Match.Profile.ID != before.ID) {
			t.Fatalf("like did not match pre-swipe candidate %s: %+v", before.ID, res.Match)
		}
		if dir == matching.Pass && res.Match != nil {
			t.Fatalf("pass created a match")
		}
	}
	if !eng.Queue().Exhausted() {
		t.Fatalf("expected exhausted after %d swipes", len(ids))
	}
	if _, err := eng.Swipe(ctx, matching.Pass); !errors.Is(err, domain.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestMatchOrderFollowsSwipeOrder(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine("a", "b", "c", "d")
	for range 4 {
		if _, err := eng.Swipe(ctx, matching.Like); err != nil {
			t.Fatalf("swipe: %v", err)
		}
	}
	matches, _ := eng.Matches(ctx)
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Seq >= matches[i].Seq {
			t.Fatalf("match order broken at %d: %d >= %d", i, matches[i-1].Seq, matches[i].Seq)
		}
		if !matches[i-1].CreatedAt.Before(matches[i].CreatedAt) {
			t.Fatalf("creation timestamps not increasing at %d", i)
		}
	}
	recent, _ := eng.Recent(ctx, 3)
	if len(recent) != 3 || recent[0].Profile.ID != "a" || recent[2].Profile.ID != "c" {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}

type failingLog struct{}

func (failingLog) Append(context.Context, domain.Match) (domain.Match, error) {
	return domain.Match{}, errors.New("disk full")
}
func (failingLog) ListByViewer(context.Context, string) ([]domain.Match, error) { return nil, nil }

func TestSwipeKeepsCursorWhenAppendFails(t *testing.T) {
	q := matching.NewQueue([]domain.Profile{{ID: "a"}})
	eng := matching.NewEngine("viewer", q, failingLog{}, nil)
	if _, err := eng.Swipe(context.Background(), matching.Like); err == nil {
		t.Fatalf("expected append error")
	}
	if q.Position() != 0 {
		t.Fatalf("cursor moved despite failure")
	}
}

func TestSetStatusAndRecordMessage(t *testing.T) {
	ctx := context.Background()
	eng, store := newEngine("a")
	res, err := eng.Swipe(ctx, matching.Like)
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	id := res.Match.ID
	for _, status := range []domain.MatchStatus{domain.MatchNegotiating, domain.MatchChatting, domain.MatchCompleted} {
		m, err := matching.SetStatus(ctx, store, id, status)
		if err != nil || m.Status != status {
			t.Fatalf("set %s: %+v %v", status, m, err)
		}
	}
	if _, err := matching.SetStatus(ctx, store, id, "archived"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := matching.SetStatus(ctx, store, "missing", domain.MatchNew); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	at := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	m, err := matching.RecordMessage(ctx, store, id, "Can we see the P&L?", at)
	if err != nil {
		t.Fatalf("record message: %v", err)
	}
	if m.LastMessage == nil || *m.LastMessage != "Can we see the P&L?" || !m.LastMessageAt.Equal(at) {
		t.Fatalf("message not recorded: %+v", m)
	}
}

type countingUpdater struct {
	*memory.Matches
	calls int
}

func (c *countingUpdater) Update(ctx context.Context, id string, fn func(*domain.Match) error) (domain.Match, error) {
	c.calls++
	return c.Matches.Update(ctx, id, fn)
}

func TestApplyChangeStoresEditsInOneUpdate(t *testing.T) {
	ctx := context.Background()
	eng, store := newEngine("P1")
	res, err := eng.Swipe(ctx, matching.Like)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	counting := &countingUpdater{Matches: store}
	status, msg := domain.MatchNegotiating, "Term sheet sent"
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	m, err := matching.ApplyChange(ctx, counting, res.Match.ID, matching.MatchChange{Status: &status, Message: &msg}, at)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("expected one update, got %d", counting.calls)
	}
	if m.Status != status || m.LastMessage == nil || *m.LastMessage != msg || !m.LastMessageAt.Equal(at) {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestApplyChangeRejectsWholeChangeOnBadStatus(t *testing.T) {
	ctx := context.Background()
	eng, store := newEngine("P1")
	res, _ := eng.Swipe(ctx, matching.Like)
	bad, msg := domain.MatchStatus("archived"), "hello"

	if _, err := matching.ApplyChange(ctx, store, res.Match.ID, matching.MatchChange{Status: &bad, Message: &msg}, time.Now()); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	got, err := store.Get(ctx, res.Match.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.MatchNew || got.LastMessage != nil {
		t.Fatalf("partial change stored: %+v", got)
	}
}

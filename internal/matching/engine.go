package matching

import (
	"context"
	"fmt"
	"time"

	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
)

// Direction is a swipe decision.
type Direction string

const (
	Like Direction = "like"
	Pass Direction = "pass"
)

// ParseDirection accepts like/pass and the left/right gesture aliases.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "like", "right":
		return Like, nil
	case "pass", "left":
		return Pass, nil
	}
	return "", fmt.Errorf("matching: unknown direction %q", s)
}

// MatchLog is the owning Match collection as seen by one engine. Append must
// assign Seq in insertion order.
type MatchLog interface {
	Append(ctx context.Context, m domain.Match) (domain.Match, error)
	ListByViewer(ctx context.Context, viewerID string) ([]domain.Match, error)
}

// SwipeResult reports what a swipe produced and where the queue now stands.
type SwipeResult struct {
	Match     *domain.Match
	Position  int
	Exhausted bool
}

// Engine applies one viewer's swipes to a queue. Calls must be serialised by
// the caller.
type Engine struct {
	viewerID string
	queue    *Queue
	matches  MatchLog
	ids      identity.Source
}

// NewEngine wires an engine for viewerID over queue.
func NewEngine(viewerID string, queue *Queue, matches MatchLog, ids identity.Source) *Engine {
	if ids == nil {
		ids = identity.System{}
	}
	return &Engine{viewerID: viewerID, queue: queue, matches: matches, ids: ids}
}

// Queue exposes the underlying candidate queue for read access.
func (e *Engine) Queue() *Queue { return e.queue }

// ViewerID is the profile the engine swipes on behalf of.
func (e *Engine) ViewerID() string { return e.viewerID }

// Swipe decides on the current candidate. A like appends a new Match. The
// cursor advances exactly once whether or not a match was created; if the
// append fails the cursor stays put so the decision can be retried.
func (e *Engine) Swipe(ctx context.Context, dir Direction) (SwipeResult, error) {
	candidate, err := e.queue.Current()
	if err != nil {
		return SwipeResult{Position: e.queue.Position(), Exhausted: true}, err
	}
	var created *domain.Match
	switch dir {
	case Like:
		m, err := e.matches.Append(ctx, domain.Match{
			ID:        e.ids.NewID(),
			ViewerID:  e.viewerID,
			Profile:   candidate,
			Status:    domain.MatchNew,
			CreatedAt: e.ids.Now(),
		})
		if err != nil {
			return SwipeResult{Position: e.queue.Position()}, fmt.Errorf("matching: record match: %w", err)
		}
		created = &m
	case Pass:
	default:
		return SwipeResult{Position: e.queue.Position()}, fmt.Errorf("matching: unknown direction %q", dir)
	}
	e.queue.Advance()
	return SwipeResult{Match: created, Position: e.queue.Position(), Exhausted: e.queue.Exhausted()}, nil
}

// Matches lists the viewer's matches in swipe order.
func (e *Engine) Matches(ctx context.Context) ([]domain.Match, error) {
	return e.matches.ListByViewer(ctx, e.viewerID)
}

// Recent returns the first n matches in insertion order.
func (e *Engine) Recent(ctx context.Context, n int) ([]domain.Match, error) {
	all, err := e.Matches(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(all) {
		all = all[:max(n, 0)]
	}
	return all, nil
}

// MatchUpdater applies fn to the stored match atomically and returns the
// stored result.
type MatchUpdater interface {
	Update(ctx context.Context, id string, fn func(*domain.Match) error) (domain.Match, error)
}

// MatchChange is a set of edits applied to a match in one update. Nil
// fields are left as they are.
type MatchChange struct {
	Status  *domain.MatchStatus
	Message *string
}

// ApplyChange validates change and applies it to the stored match in a
// single Update, so either every edit is stored or none is. A message is
// stamped with at.
func ApplyChange(ctx context.Context, store MatchUpdater, id string, change MatchChange, at time.Time) (domain.Match, error) {
	if change.Status != nil && !change.Status.Valid() {
		return domain.Match{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *change.Status)
	}
	return store.Update(ctx, id, func(m *domain.Match) error {
		if change.Status != nil {
			m.Status = *change.Status
		}
		if change.Message != nil {
			excerpt := *change.Message
			m.LastMessage = &excerpt
			m.LastMessageAt = &at
		}
		return nil
	})
}

// SetStatus moves a match to any of the four statuses. Transition order is
// owned by the messaging workflow, not checked here.
func SetStatus(ctx context.Context, store MatchUpdater, id string, status domain.MatchStatus) (domain.Match, error) {
	return ApplyChange(ctx, store, id, MatchChange{Status: &status}, time.Time{})
}

// RecordMessage stores the latest message excerpt and its timestamp.
func RecordMessage(ctx context.Context, store MatchUpdater, id, excerpt string, at time.Time) (domain.Match, error) {
	return ApplyChange(ctx, store, id, MatchChange{Message: &excerpt}, at)
}

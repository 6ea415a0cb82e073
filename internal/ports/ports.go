package ports

import (
	"context"

	"dealmatch/internal/domain"
	"dealmatch/internal/matching"
	"dealmatch/internal/onboarding"
)

// Onboarding runs intake sessions and stores their resulting profiles.
type Onboarding interface {
	Schema(role domain.Role) ([]domain.Step, error)
	Begin(ctx context.Context, role domain.Role) (sessionID string, state onboarding.State, err error)
	State(ctx context.Context, sessionID string) (onboarding.State, error)
	Answer(ctx context.Context, sessionID, fieldID string, value domain.Answer) (onboarding.State, error)
	Advance(ctx context.Context, sessionID string) (onboarding.State, *domain.Profile, error)
	Back(ctx context.Context, sessionID string) (onboarding.State, error)
}

// Profiles reads stored profiles.
type Profiles interface {
	Get(ctx context.Context, id string) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
}

// Discovery serves each viewer's candidate queue and swipes.
type Discovery interface {
	Current(ctx context.Context, viewerID string) (domain.Profile, int, error)
	Stack(ctx context.Context, viewerID string, n int) ([]domain.Profile, int, error)
	Swipe(ctx context.Context, viewerID string, dir matching.Direction) (matching.SwipeResult, error)
	Matches(ctx context.Context, viewerID string) ([]domain.Match, error)
	SetStatus(ctx context.Context, matchID string, status domain.MatchStatus) (domain.Match, error)
	RecordMessage(ctx context.Context, matchID, excerpt string) (domain.Match, error)
	// UpdateMatch applies every edit in change in one update.
	UpdateMatch(ctx context.Context, matchID string, change matching.MatchChange) (domain.Match, error)
}

// Analysis registers uploads and accepts analysis outcomes.
type Analysis interface {
	Upload(ctx context.Context, name, typeTag string) (domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Complete(ctx context.Context, id, summary string, metrics map[string]string) (domain.Document, error)
	Fail(ctx context.Context, id, reason string) (domain.Document, error)
	// Process runs the analysis for an uploaded document inline.
	Process(ctx context.Context, id string) (domain.Document, error)
}

// DashboardSummary aggregates a viewer's activity.
type DashboardSummary struct {
	ViewerID        string
	Matches         int
	MatchesByStatus map[domain.MatchStatus]int
	Recent          []domain.Match
	Documents       map[domain.DocumentStatus]int
}

// Dashboard builds viewer summaries.
type Dashboard interface {
	Summary(ctx context.Context, viewerID string) (DashboardSummary, error)
}

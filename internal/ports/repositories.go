package ports

import (
	"context"

	"dealmatch/internal/domain"
)

// ProfileRepository stores completed onboarding profiles. Role is written
// once on Create and never updated.
type ProfileRepository interface {
	Create(ctx context.Context, p domain.Profile) error
	Get(ctx context.Context, id string) (domain.Profile, error)
	// List returns profiles in creation order.
	List(ctx context.Context) ([]domain.Profile, error)
	TouchLastActive(ctx context.Context, id, marker string) error
}

// MatchRepository is the canonical match collection. Append assigns Seq in
// insertion order and rejects a second match for the same viewer/profile pair.
type MatchRepository interface {
	Append(ctx context.Context, m domain.Match) (domain.Match, error)
	Get(ctx context.Context, id string) (domain.Match, error)
	ListByViewer(ctx context.Context, viewerID string) ([]domain.Match, error)
	Update(ctx context.Context, id string, fn func(*domain.Match) error) (domain.Match, error)
}

// DocumentRepository is the canonical document collection. Insert of an
// analyzing document also queues an analysis job for it.
type DocumentRepository interface {
	Insert(ctx context.Context, doc domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Update(ctx context.Context, id string, fn func(*domain.Document) error) (domain.Document, error)
}

// Pinger reports storage reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

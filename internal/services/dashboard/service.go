package dashboard

import (
	"context"

	"dealmatch/internal/domain"
	"dealmatch/internal/ports"
)

const recentMatches = 3

type Service struct {
	profiles  ports.ProfileRepository
	matches   ports.MatchRepository
	documents ports.DocumentRepository
}

func New(profiles ports.ProfileRepository, matches ports.MatchRepository, documents ports.DocumentRepository) *Service {
	return &Service{profiles: profiles, matches: matches, documents: documents}
}

// Summary counts the viewer's matches by status, keeps the first three in
// swipe order, and counts documents by status.
func (s *Service) Summary(ctx context.Context, viewerID string) (ports.DashboardSummary, error) {
	if _, err := s.profiles.Get(ctx, viewerID); err != nil {
		return ports.DashboardSummary{}, err
	}
	matches, err := s.matches.ListByViewer(ctx, viewerID)
	if err != nil {
		return ports.DashboardSummary{}, err
	}
	docs, err := s.documents.List(ctx)
	if err != nil {
		return ports.DashboardSummary{}, err
	}
	out := ports.DashboardSummary{
		ViewerID:        viewerID,
		Matches:         len(matches),
		MatchesByStatus: map[domain.MatchStatus]int{},
		Documents:       map[domain.DocumentStatus]int{},
	}
	for _, m := range matches {
		out.MatchesByStatus[m.Status]++
	}
	out.Recent = matches[:min(recentMatches, len(matches))]
	for _, d := range docs {
		out.Documents[d.Status]++
	}
	return out, nil
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"dealmatch/internal/adapters/memory"
	"dealmatch/internal/domain"
)

func TestSummaryCountsAndRecent(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfiles()
	matches := memory.NewMatches()
	docs := memory.NewDocuments()
	_ = profiles.Create(ctx, domain.Profile{ID: "me", Role: domain.RoleBuyer})

	statuses := []domain.MatchStatus{domain.MatchNew, domain.MatchChatting, domain.MatchChatting, domain.MatchNegotiating}
	for i, st := range statuses {
		_, err := matches.Append(ctx, domain.Match{
			ID:        string(rune('a' + i)),
			ViewerID:  "me",
			Profile:   domain.Profile{ID: string(rune('p' + i))},
			Status:    st,
			CreatedAt: time.Unix(int64(i), 0),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	_, _ = matches.Append(ctx, domain.Match{ID: "other", ViewerID: "someone-else", Profile: domain.Profile{ID: "x"}, Status: domain.MatchNew})
	_ = docs.Insert(ctx, domain.Document{ID: "d1", Status: domain.DocumentAnalyzing})
	_ = docs.Insert(ctx, domain.Document{ID: "d2", Status: domain.DocumentAnalyzed})

	sum, err := New(profiles, matches, docs).Summary(ctx, "me")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Matches != 4 || sum.MatchesByStatus[domain.MatchChatting] != 2 || sum.MatchesByStatus[domain.MatchNegotiating] != 1 {
		t.Fatalf("unexpected match counts: %+v", sum)
	}
	if len(sum.Recent) != 3 || sum.Recent[0].ID != "a" || sum.Recent[2].ID != "c" {
		t.Fatalf("unexpected recent: %+v", sum.Recent)
	}
	if sum.Documents[domain.DocumentAnalyzing] != 1 || sum.Documents[domain.DocumentAnalyzed] != 1 {
		t.Fatalf("unexpected document counts: %+v", sum.Documents)
	}
}
